package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/store"
)

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Username:   "ada",
		Email:      "ada@example.com",
		Password:   "s3cret-pass",
		AvatarPath: "avatar.png",
	}
}

func TestRegister(t *testing.T) {
	_, fm, _, _, userSvc := newTestServices()

	user, err := userSvc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.False(t, user.ID.IsZero())

	assert.NotEmpty(t, user.Avatar.MediaID)
	assert.Empty(t, user.CoverImage.MediaID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.Equal(t, 1, fm.stored())

	// All back-reference sets start out as empty arrays, not nil.
	assert.NotNil(t, user.Posts)
	assert.NotNil(t, user.Followers)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	_, _, _, _, userSvc := newTestServices()

	_, err := userSvc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err = userSvc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_InsertRaceMapsToConflict(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()

	// A concurrent registration can pass the existence pre-check and lose
	// to the unique index at insert time.
	ms.failUserInsert = store.ErrDuplicate

	_, err := userSvc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_AvatarRequired(t *testing.T) {
	_, _, _, _, userSvc := newTestServices()

	req := validRegistration()
	req.AvatarPath = ""
	_, err := userSvc.Register(context.Background(), req)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "avatar", ve.Field)
}

func TestRegister_OptionalCoverFailureIsIgnored(t *testing.T) {
	_, fm, _, _, userSvc := newTestServices()
	fm.failUploads["cover.png"] = true

	req := validRegistration()
	req.CoverPath = "cover.png"
	user, err := userSvc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, user.CoverImage.MediaID)
}

func TestAuthenticate(t *testing.T) {
	_, _, _, _, userSvc := newTestServices()

	_, err := userSvc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	user, err := userSvc.Authenticate(context.Background(), "ada", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	_, err = userSvc.Authenticate(context.Background(), "ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = userSvc.Authenticate(context.Background(), "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFollow_SelfFollowRejected(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()
	u := ms.addUser()

	_, err := userSvc.Follow(context.Background(), u.ID, u.ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, ms.users[u.ID].Followers)
	assert.Empty(t, ms.users[u.ID].Following)
}

func TestFollow_SecondFollowIsNoOp(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()
	target := ms.addUser()
	follower := ms.addUser()

	already, err := userSvc.Follow(context.Background(), target.ID, follower.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Contains(t, ms.users[target.ID].Followers, follower.ID)
	assert.Contains(t, ms.users[follower.ID].Following, target.ID)

	already, err = userSvc.Follow(context.Background(), target.ID, follower.ID)
	require.NoError(t, err)
	assert.True(t, already)

	assert.Len(t, ms.users[target.ID].Followers, 1)
	assert.Len(t, ms.users[follower.ID].Following, 1)
}

func TestUnfollow_NeverFollowedIsNoOp(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()
	target := ms.addUser()
	user := ms.addUser()

	err := userSvc.Unfollow(context.Background(), target.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ms.users[target.ID].Followers)
}

func TestFollow_TargetNotFound(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()
	follower := ms.addUser()

	_, err := userSvc.Follow(context.Background(), primitive.NewObjectID(), follower.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowersAndFollowing(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()
	target := ms.addUser()
	f1 := ms.addUser()
	f2 := ms.addUser()

	_, err := userSvc.Follow(context.Background(), target.ID, f1.ID)
	require.NoError(t, err)
	_, err = userSvc.Follow(context.Background(), target.ID, f2.ID)
	require.NoError(t, err)

	followers, err := userSvc.Followers(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := userSvc.Following(context.Background(), f1.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, target.ID, following[0].ID)
}

func TestIsFollowing(t *testing.T) {
	ms, _, _, _, userSvc := newTestServices()
	target := ms.addUser()
	follower := ms.addUser()

	ok, err := userSvc.IsFollowing(context.Background(), target.ID, follower.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = userSvc.Follow(context.Background(), target.ID, follower.ID)
	require.NoError(t, err)

	ok, err = userSvc.IsFollowing(context.Background(), target.ID, follower.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteUser_CleansUpEverything(t *testing.T) {
	ms, fm, postSvc, commentSvc, userSvc := newTestServices()

	user, err := userSvc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	bystander := ms.addUser()

	// The user posts with a photo, the bystander comments on it, and the user
	// comments on the bystander's post.
	post, err := postSvc.Create(context.Background(), user.ID, "my post", "body", []string{"pic.jpg"}, nil)
	require.NoError(t, err)
	_, err = commentSvc.Create(context.Background(), post.ID, bystander.ID, "from bystander")
	require.NoError(t, err)

	otherPost := ms.addPost(bystander.ID)
	stray, err := commentSvc.Create(context.Background(), otherPost.ID, user.ID, "from the user")
	require.NoError(t, err)

	err = userSvc.Delete(context.Background(), user.ID)
	require.NoError(t, err)

	// The account, its posts, every comment under them and the user's own
	// comments elsewhere are gone; all media assets were released.
	assert.NotContains(t, ms.users, user.ID)
	assert.NotContains(t, ms.posts, post.ID)
	assert.NotContains(t, ms.comments, stray.ID)
	assert.Zero(t, fm.stored())

	// The user's comments elsewhere are removed in bulk, so the bystander's
	// post keeps a dangling reference. Readers tolerate absent ids.
	assert.Contains(t, ms.posts[otherPost.ID].Comments, stray.ID)
}

func TestDeleteUser_NotFound(t *testing.T) {
	_, _, _, _, userSvc := newTestServices()
	err := userSvc.Delete(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
