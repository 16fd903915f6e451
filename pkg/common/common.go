package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/random"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(int64(os.Getpid() % 1023))
	if err != nil {
		snowflakeNode, _ = snowflake.NewNode(1)
	}
}

// UUIDint64 returns a cluster-safe int64 identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns the string form of a snowflake identifier.
func UUID() string {
	return snowflakeNode.Generate().String()
}

// GetSecretSalt returns the shared salt for operator password hashing.
// METASTACK_SECRET_SALT overrides the built-in value.
func GetSecretSalt() string {
	if v := os.Getenv("METASTACK_SECRET_SALT"); v != "" {
		return v
	}
	return "metastack-0517"
}

// Sha256HashWithSalt hashes src with the given salt.
func Sha256HashWithSalt(src, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GenPassword produces a random password of the given length, the same way
// the provisioning flow fills unset stack passwords.
func GenPassword(length uint8) string {
	if length == 0 {
		length = 16
	}
	return random.String(length, random.Alphanumeric)
}

// GenSecret produces a random hex secret suitable for JWT signing keys.
func GenSecret() string {
	return random.String(32, random.Hex)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// FmtDate formats a time in the compact form used for backup filenames.
func FmtDate(t time.Time) string {
	return t.Format("20060102_150405")
}
