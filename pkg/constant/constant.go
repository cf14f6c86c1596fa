package constant

// Message types
const (
	MsgTypeText  = "text"
	MsgTypeImage = "image"
	MsgTypeFile  = "file"
)

// ValidMsgType reports whether t is a known message type.
func ValidMsgType(t string) bool {
	switch t {
	case MsgTypeText, MsgTypeImage, MsgTypeFile:
		return true
	}
	return false
}

// MaxContentLength is the maximum message body length in bytes.
const MaxContentLength = 8192

// DefaultPageLimit is the default history page size.
const DefaultPageLimit = 50

// MaxPageLimit caps history page sizes.
const MaxPageLimit = 100

// Redis key patterns (without prefix, use RedisKey*() to get full key)
const (
	redisKeySeqConversation = "seq:conv:%d" // seq:conv:{conversation_id}
	redisKeyOnline          = "online:%s"   // online:{user_id}
	redisKeyRoomChannel     = "room:%d"     // room:{conversation_id} pub/sub channel
	redisKeyRoomPattern     = "room:*"      // pattern for backplane subscription
)

// redisKeyPrefix is the global prefix for all Redis keys.
var redisKeyPrefix = "shchat:"

// InitRedisKeyPrefix initializes the Redis key prefix from config.
func InitRedisKeyPrefix(prefix string) {
	if prefix != "" {
		redisKeyPrefix = prefix
	}
}

// GetRedisKeyPrefix returns the current Redis key prefix.
func GetRedisKeyPrefix() string {
	return redisKeyPrefix
}

// Redis key getters with prefix
func RedisKeySeqConversation() string { return redisKeyPrefix + redisKeySeqConversation }
func RedisKeyOnline() string          { return redisKeyPrefix + redisKeyOnline }
func RedisKeyRoomChannel() string     { return redisKeyPrefix + redisKeyRoomChannel }
func RedisKeyRoomPattern() string     { return redisKeyPrefix + redisKeyRoomPattern }
