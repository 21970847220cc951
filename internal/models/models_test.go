package models

import (
	"strings"
	"testing"

	"gator-commons/internal/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testSession() Session {
	return Session{UserID: uuid.New(), Username: "alice"}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		secret   string
		wantErr  bool
	}{
		{"short username", "ab", "1234", true},
		{"short secret", "abcd", "123", true},
		{"minimums", "abc", "1234", false},
		{"multibyte username counts characters", "äöü", "1234", false},
		{"long username", strings.Repeat("u", 51), "1234", true},
		{"secret over bcrypt limit", "abcd", strings.Repeat("p", 73), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.username, tt.secret)
			if tt.wantErr {
				assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewUserHashesSecret(t *testing.T) {
	user, err := NewUser("Alice", "hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Username)
	assert.NotEqual(t, "hunter2", user.SecretHash)
	assert.True(t, user.CheckSecret("hunter2"))
	assert.False(t, user.CheckSecret("Hunter2"))
	assert.Equal(t, uuid.Version(7), user.ID.Version())
}

func TestSessionValidate(t *testing.T) {
	assert.NoError(t, testSession().Validate())
	assert.True(t, utils.IsErrorCode(Session{}.Validate(), utils.ErrUnauthorized))
	assert.True(t, utils.IsErrorCode(Session{UserID: uuid.New()}.Validate(), utils.ErrUnauthorized))
}

func TestNewPost(t *testing.T) {
	session := testSession()

	post, err := NewPost(session, "  T  ", "\tC\n")
	require.NoError(t, err)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "C", post.Content)
	assert.Equal(t, session.UserID, post.AuthorID)
	assert.Equal(t, "alice", post.AuthorName)
	assert.Zero(t, post.LikesCount)
	assert.Zero(t, post.CommentsCount)

	_, err = NewPost(session, "   ", "C")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	_, err = NewPost(session, "T", "  ")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	_, err = NewPost(Session{}, "T", "C")
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
}

func TestNewComment(t *testing.T) {
	postID := uuid.New()
	comment, err := NewComment(testSession(), postID, " nice ")
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Content)
	assert.Equal(t, postID, comment.PostID)

	_, err = NewComment(testSession(), postID, "   ")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	_, err = NewComment(testSession(), uuid.Nil, "nice")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestCounterFieldValid(t *testing.T) {
	assert.True(t, LikesCount.Valid())
	assert.True(t, CommentsCount.Valid())
	assert.False(t, CounterField("karma").Valid())
}

func TestGuestbookEntryOptionalFields(t *testing.T) {
	entry, err := NewGuestbookEntry(" Bo ", " hi ", "  ", "", false)
	require.NoError(t, err)
	assert.Equal(t, "Bo", entry.AuthorName)
	assert.Equal(t, "hi", entry.Message)
	assert.Nil(t, entry.Organization)
	assert.Nil(t, entry.Email)

	_, err = NewGuestbookEntry("", "hi", "", "", false)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	_, err = NewGuestbookEntry("Bo", " ", "", "", false)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestGuestbookEntryMasked(t *testing.T) {
	private, err := NewGuestbookEntry("Bo", "hi", "Acme", "bo@example.com", false)
	require.NoError(t, err)
	public, err := NewGuestbookEntry("Cy", "yo", "", "cy@example.com", true)
	require.NoError(t, err)

	want := *private
	want.Email = nil
	if diff := cmp.Diff(want, private.Masked()); diff != "" {
		t.Errorf("masked private entry mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, private.Email, "masking must not touch the stored entry")

	masked := public.Masked()
	require.NotNil(t, masked.Email)
	assert.Equal(t, "cy@example.com", *masked.Email)
}
