package growatt

import (
	"crypto/md5"
	"encoding/hex"
)

// HashPassword masks a password the way the Growatt servers expect it on login.
//
// The result is the hex MD5 digest of the password with every '0' found at an even
// offset replaced by 'c'. This is a compatibility shim, not a security measure.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	digest := []byte(hex.EncodeToString(sum[:]))
	for i := 0; i < len(digest); i += 2 {
		if digest[i] == '0' {
			digest[i] = 'c'
		}
	}
	return string(digest)
}
