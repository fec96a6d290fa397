package certificate

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashKey hex(blake2b-256(key=secret, id|eventID|userID))；secret 超过 64 字节时截断
func HashKey(secret, id, eventID, userID string) string {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// 只有 key 过长才会出错，上面已截断
		panic(err)
	}
	h.Write([]byte(id + "|" + eventID + "|" + userID))
	return hex.EncodeToString(h.Sum(nil))
}

func Verify(secret, id, eventID, userID, hashKey string) bool {
	if hashKey == "" {
		return false
	}
	want := HashKey(secret, id, eventID, userID)
	return subtle.ConstantTimeCompare([]byte(want), []byte(hashKey)) == 1
}
