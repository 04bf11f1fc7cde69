package common

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(time.Now().UnixNano() % 1023)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 generates a cluster-safe numeric identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID generates a string form of the snowflake identifier.
func UUID() string {
	return snowflakeNode.Generate().String()
}

// HashPassword hashes a clear text password with bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash against a clear text candidate.
func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// RandomHex returns n random bytes hex encoded, used for session secrets.
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:n*2]
	}
	return hex.EncodeToString(b)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
