package common

import (
	"fmt"
	"strconv"
)

const (
	PrefixLength = 4
)

// RoleType defines the actor role in the chat system.
type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleProvider RoleType = "provider"
	RoleAdmin    RoleType = "admin"
)

// Actor represents a marketplace identity that maps to a chat user id.
// The marketplace backend keys customers and providers by integer ids;
// the chat service addresses them by prefixed string ids.
type Actor struct {
	Id   int64
	Role RoleType
}

// ToChatUserId converts an Actor to the chat system's string user id.
//
//	Actor{Id: 42, Role: RoleCustomer}.ToChatUserId() => "cu__42"
//	Actor{Id: 7, Role: RoleProvider}.ToChatUserId()  => "pr__7"
func (a *Actor) ToChatUserId() (string, error) {
	switch a.Role {
	case RoleCustomer:
		return fmt.Sprintf("cu__%d", a.Id), nil
	case RoleProvider:
		return fmt.Sprintf("pr__%d", a.Id), nil
	case RoleAdmin:
		return fmt.Sprintf("ad__%d", a.Id), nil
	default:
		return "", fmt.Errorf("failed to transfer actor to user id, role: %s", a.Role)
	}
}

// FromChatUserId parses a chat user id string back into an Actor.
// Returns an error if the format is unrecognised.
func (a *Actor) FromChatUserId(userId string) error {
	if a == nil {
		return fmt.Errorf("actor is nil")
	}
	if len(userId) < PrefixLength+1 {
		return fmt.Errorf("invalid userId: %q", userId)
	}
	prefix := userId[:PrefixLength]
	idStr := userId[PrefixLength:]
	switch prefix {
	case "cu__":
		a.Role = RoleCustomer
	case "pr__":
		a.Role = RoleProvider
	case "ad__":
		a.Role = RoleAdmin
	default:
		return fmt.Errorf("unknown prefix: %q", prefix)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id: %q", idStr)
	}
	a.Id = id
	return nil
}

// RoleOfUserId returns the role encoded in a chat user id, or an
// empty RoleType if the id is malformed.
func RoleOfUserId(userId string) RoleType {
	var a Actor
	if err := a.FromChatUserId(userId); err != nil {
		return ""
	}
	return a.Role
}

// IsCustomerId reports whether the chat user id belongs to a customer.
func IsCustomerId(userId string) bool {
	return RoleOfUserId(userId) == RoleCustomer
}

// IsProviderId reports whether the chat user id belongs to a provider.
func IsProviderId(userId string) bool {
	return RoleOfUserId(userId) == RoleProvider
}

// IsAdminId reports whether the chat user id belongs to an admin.
func IsAdminId(userId string) bool {
	return RoleOfUserId(userId) == RoleAdmin
}
