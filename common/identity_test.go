package common

import "testing"

func TestActor_ToChatUserId(t *testing.T) {
	cases := []struct {
		actor Actor
		want  string
	}{
		{Actor{Id: 42, Role: RoleCustomer}, "cu__42"},
		{Actor{Id: 7, Role: RoleProvider}, "pr__7"},
		{Actor{Id: 1, Role: RoleAdmin}, "ad__1"},
	}

	for _, c := range cases {
		got, err := c.actor.ToChatUserId()
		if err != nil {
			t.Fatalf("ToChatUserId(%+v) failed: %v", c.actor, err)
		}
		if got != c.want {
			t.Errorf("ToChatUserId(%+v) = %q, want %q", c.actor, got, c.want)
		}
	}

	bad := Actor{Id: 1, Role: RoleType("robot")}
	if _, err := bad.ToChatUserId(); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestActor_FromChatUserId(t *testing.T) {
	var a Actor
	if err := a.FromChatUserId("pr__321"); err != nil {
		t.Fatalf("FromChatUserId failed: %v", err)
	}
	if a.Role != RoleProvider || a.Id != 321 {
		t.Errorf("got %+v, want provider/321", a)
	}

	for _, bad := range []string{"", "cu__", "xx__5", "cu__abc", "cu_5"} {
		var b Actor
		if err := b.FromChatUserId(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestActor_RoundTrip(t *testing.T) {
	orig := Actor{Id: 9001, Role: RoleCustomer}
	id, err := orig.ToChatUserId()
	if err != nil {
		t.Fatal(err)
	}

	var parsed Actor
	if err := parsed.FromChatUserId(id); err != nil {
		t.Fatal(err)
	}
	if parsed != orig {
		t.Errorf("round trip mismatch: %+v != %+v", parsed, orig)
	}
}

func TestRoleHelpers(t *testing.T) {
	if !IsCustomerId("cu__1") || IsCustomerId("pr__1") {
		t.Error("IsCustomerId misclassified")
	}
	if !IsProviderId("pr__9") || IsProviderId("ad__9") {
		t.Error("IsProviderId misclassified")
	}
	if !IsAdminId("ad__3") || IsAdminId("garbage") {
		t.Error("IsAdminId misclassified")
	}
	if RoleOfUserId("nonsense") != "" {
		t.Error("RoleOfUserId should be empty for malformed id")
	}
}
