package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService([]byte("test-secret"), 24*time.Hour)
	subject := uuid.New()

	raw, err := svc.Issue(subject)
	require.NoError(t, err)

	got, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService([]byte("test-secret"), time.Hour).WithClock(func() time.Time { return issuedAt })

	raw, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrBadSignature)
}

func TestVerifyForeignSecret(t *testing.T) {
	issuer := NewService([]byte("secret-a"), time.Hour)
	verifier := NewService([]byte("secret-b"), time.Hour)

	raw, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestVerifyNonUUIDSubject(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	// A token signed with the right secret but carrying a junk subject.
	raw := issueWithSubject(t, svc, "not-a-uuid")
	_, err := svc.Verify(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}
