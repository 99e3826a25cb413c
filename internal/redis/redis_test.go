package redis

import "testing"

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect("http://not-redis"); err == nil {
		t.Error("non-redis URL accepted")
	}
}
