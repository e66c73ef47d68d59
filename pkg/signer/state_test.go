package signer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStateSignerGenerateAndVerify(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute)
	state, err := signer.Generate("google")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	require.NoError(t, signer.Verify(state, "google"))
	require.ErrorIs(t, signer.Verify(state, "microsoft"), ErrInvalidState)
}

func TestStateSignerRejectsTampering(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute)
	state, err := signer.Generate("google")
	require.NoError(t, err)

	require.ErrorIs(t, signer.Verify(state+"0", "google"), ErrInvalidState)
	require.ErrorIs(t, signer.Verify("garbage", "google"), ErrInvalidState)
	require.ErrorIs(t, NewStateSigner("other", time.Minute).Verify(state, "google"), ErrInvalidState)
}

func TestStateSignerExpired(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute)
	now := time.Now()
	signer.now = func() time.Time { return now }

	state, err := signer.Generate("microsoft")
	require.NoError(t, err)

	signer.now = func() time.Time { return now.Add(2 * time.Minute) }
	require.ErrorIs(t, signer.Verify(state, "microsoft"), ErrExpiredState)
}

func TestStateSignerRequiresSecret(t *testing.T) {
	_, err := NewStateSigner("", time.Minute).Generate("google")
	require.Error(t, err)
}
