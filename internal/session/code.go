package session

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/errs"
	"github.com/silasdani/bandaid/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 5
)

// newSessionCode generates a session code and checks it against the store
// before use. The check is a read, not a reservation: two devices
// generating the same code in the same instant still collide, which is
// accepted at this scale.
func (c *Controller) newSessionCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrSessionCreateFailed, err)
		}
		existing, err := c.store.Read(ctx, store.SessionPath(code))
		if err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrSessionCreateFailed, err)
		}
		if existing == nil {
			return code, nil
		}
		c.log.Warn("session code collision", zap.String("session_id", code))
	}
	return "", errs.ErrSessionCreateFailed
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
