package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDrain_SaveOutlivesSlowShutdown(t *testing.T) {
	shutdown := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	var saveErr error
	saved := false
	save := func(ctx context.Context) error {
		saved = true
		saveErr = ctx.Err()
		return saveErr
	}

	drain(zap.NewNop(), 20*time.Millisecond, shutdown, save)

	require.True(t, saved)
	require.NoError(t, saveErr)
}
