package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/session"
)

func TestStartSessionRestore(t *testing.T) {
	sess := session.New(session.NewMemoryStore(), auth.NewTokenManager("s", 60), nil, zap.NewNop())
	assert.True(t, sess.State().Loading)

	done := StartSessionRestore(context.Background(), sess)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("restore did not finish")
	}
	assert.False(t, sess.State().Loading)
}

func TestStartAuditWorkerNil(t *testing.T) {
	assert.NotPanics(t, func() { StartAuditWorker(nil) })
}
