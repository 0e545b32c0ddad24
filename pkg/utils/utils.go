package utils

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	NewObjectKey(prefix string, ext string) string
}

type utils struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func New() IUtils {
	return &utils{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), u.entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// NewObjectKey builds a unique storage key such as
// "scans/2024/05/01/3f2c...e1.jpg".
func (u *utils) NewObjectKey(prefix string, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	datePath := time.Now().UTC().Format("2006/01/02")

	if prefix == "" {
		return fmt.Sprintf("%s/%s", datePath, name)
	}
	return filepath.ToSlash(filepath.Join(prefix, datePath, name))
}
