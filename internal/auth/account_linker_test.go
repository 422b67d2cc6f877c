package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
)

func TestDecideRegister(t *testing.T) {
	var l AccountLinker

	assert.Equal(t, RegisterCreate, l.DecideRegister(nil))

	emailUser := &entity.User{AuthMethods: []entity.AuthMethod{entity.AuthMethodEmail}}
	assert.Equal(t, RegisterConflict, l.DecideRegister(emailUser))

	linkedUser := &entity.User{AuthMethods: []entity.AuthMethod{entity.AuthMethodGoogle, entity.AuthMethodEmail}}
	assert.Equal(t, RegisterConflict, l.DecideRegister(linkedUser))

	googleOnly := &entity.User{AuthMethods: []entity.AuthMethod{entity.AuthMethodGoogle}}
	assert.Equal(t, RegisterStagePassword, l.DecideRegister(googleOnly))

	appleOnly := &entity.User{AuthMethods: []entity.AuthMethod{entity.AuthMethodApple}}
	assert.Equal(t, RegisterStagePassword, l.DecideRegister(appleOnly))
}

func TestDecideOAuth(t *testing.T) {
	var l AccountLinker
	u := &entity.User{ID: "user-1"}

	// Provider match is the fast path even when an email match also exists.
	assert.Equal(t, OAuthSignIn, l.DecideOAuth(u, u))
	assert.Equal(t, OAuthSignIn, l.DecideOAuth(u, nil))
	assert.Equal(t, OAuthLink, l.DecideOAuth(nil, u))
	assert.Equal(t, OAuthCreate, l.DecideOAuth(nil, nil))
}
