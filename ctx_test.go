package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/mukbit/acs-auth"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAccountContextRoundTrip(t *testing.T) {
	account := &auth.Account{
		ID:    bson.NewObjectID(),
		Email: "user@example.com",
	}

	ctx := auth.WithContext(context.Background(), account)

	got, ok := auth.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, account, got)
}

func TestAccountFromEmptyContext(t *testing.T) {
	got, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSessionContextRoundTrip(t *testing.T) {
	issued := time.Now()
	expires := issued.Add(time.Hour)
	session := &auth.SessionObject{
		AccountID:      bson.NewObjectID().Hex(),
		Email:          "user@example.com",
		Issuer:         "test-issuer",
		IssuedAt:       &issued,
		ExpirationDate: &expires,
	}

	ctx := auth.WithSessionContext(context.Background(), session)

	got, ok := auth.SessionFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, session.GetAccountID(), got.GetAccountID())
	assert.Equal(t, session.GetEmail(), got.GetEmail())
}

func TestSessionFromEmptyContext(t *testing.T) {
	got, ok := auth.SessionFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
