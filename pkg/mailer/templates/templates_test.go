package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerifyOTP(t *testing.T) {
	data := NewEmailData("DiaryFi", "Ana", "ana@example.com",
		WithCode("4821"), WithExpiresIn(10*time.Minute))

	subject, text, html, err := Render(VerifyOTP, data)
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, text, "4821")
	assert.Contains(t, html, "4821")
	assert.Contains(t, text, "10 minutes")
}

func TestRenderTempPassword(t *testing.T) {
	data := NewEmailData("DiaryFi", "Ana", "ana@example.com", WithCode("481516"))

	subject, text, html, err := Render(TempPassword, data)
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, text, "481516")
	assert.Contains(t, html, "481516")
}

func TestRenderResetPassword(t *testing.T) {
	data := NewEmailData("DiaryFi", "Ana", "ana@example.com",
		WithResetURL("https://app.diaryfi.test/reset?token=abc"),
		WithExpiresIn(time.Hour))

	subject, text, html, err := Render(ResetPassword, data)
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, text, "https://app.diaryfi.test/reset?token=abc")
	assert.Contains(t, html, "https://app.diaryfi.test/reset?token=abc")
	assert.Contains(t, text, "1 hour(s)")
}

func TestRenderSupport(t *testing.T) {
	data := NewEmailData("DiaryFi", "Ana", "ana@example.com",
		WithSubject("Sync problem"),
		WithMessage("My entries stopped syncing yesterday."))

	subject, text, html, err := Render(Support, data)
	require.NoError(t, err)
	assert.Equal(t, "Support: Sync problem", subject)
	assert.Contains(t, text, "ana@example.com")
	assert.Contains(t, text, "My entries stopped syncing yesterday.")
	assert.Contains(t, html, "Sync problem")
	assert.Contains(t, html, "My entries stopped syncing yesterday.")
}

func TestRenderWithJobData(t *testing.T) {
	// The worker round-trips EmailData through JSON as map[string]any.
	data := NewEmailData("DiaryFi", "Ana", "ana@example.com", WithCode("4821"))
	m := ToMap(data)

	_, text, _, err := Render(VerifyOTP, m)
	require.NoError(t, err)
	assert.Contains(t, text, "4821")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("no_such_template", EmailData{})
	assert.Error(t, err)
}
