package util

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex is used for record ids, which are 32 hex chars in the warehouse.
func MD5Hex(s string) string {
	x := md5.Sum([]byte(s))
	return hex.EncodeToString(x[:])
}
