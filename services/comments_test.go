package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateComment_UpdatesBothBackRefs(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	author := ms.addUser()
	post := ms.addPost(owner.ID)

	comment, err := commentSvc.Create(context.Background(), post.ID, author.ID, "nice post")
	require.NoError(t, err)
	require.False(t, comment.ID.IsZero())

	assert.Contains(t, ms.posts[post.ID].Comments, comment.ID)
	assert.Contains(t, ms.users[author.ID].Comments, comment.ID)
}

func TestCreateComment_PostNotFound(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	author := ms.addUser()

	_, err := commentSvc.Create(context.Background(), primitive.NewObjectID(), author.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateComment_EmptyContent(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	post := ms.addPost(owner.ID)

	_, err := commentSvc.Create(context.Background(), post.ID, owner.ID, "   ")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)
}

func TestDeleteComment_PullsBothBackRefs(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	author := ms.addUser()
	post := ms.addPost(owner.ID)
	comment := ms.addComment(post.ID, author.ID)

	err := commentSvc.Delete(context.Background(), comment.ID, author.ID)
	require.NoError(t, err)

	assert.NotContains(t, ms.posts[post.ID].Comments, comment.ID)
	assert.NotContains(t, ms.users[author.ID].Comments, comment.ID)
	assert.Empty(t, ms.comments)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	author := ms.addUser()
	post := ms.addPost(owner.ID)
	comment := ms.addComment(post.ID, author.ID)

	// Even the post owner cannot delete someone else's comment.
	err := commentSvc.Delete(context.Background(), comment.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, ms.comments, 1)
}

func TestEditComment(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	author := ms.addUser()
	post := ms.addPost(owner.ID)
	comment := ms.addComment(post.ID, author.ID)

	updated, err := commentSvc.Edit(context.Background(), comment.ID, author.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = commentSvc.Edit(context.Background(), comment.ID, owner.ID, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLikeComment_SecondLikeIsNoOp(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	liker := ms.addUser()
	post := ms.addPost(owner.ID)
	comment := ms.addComment(post.ID, owner.ID)

	_, already, err := commentSvc.Like(context.Background(), comment.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, already)

	_, already, err = commentSvc.Like(context.Background(), comment.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, already)

	assert.Len(t, ms.comments[comment.ID].Likes, 1)
	assert.Len(t, ms.users[liker.ID].LikedComments, 1)
}

func TestUnlikeComment_NeverLikedIsNoOp(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	user := ms.addUser()
	post := ms.addPost(owner.ID)
	comment := ms.addComment(post.ID, owner.ID)

	err := commentSvc.Unlike(context.Background(), comment.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ms.comments[comment.ID].Likes)
}

func TestListByPost(t *testing.T) {
	ms, _, _, commentSvc, _ := newTestServices()
	owner := ms.addUser()
	post := ms.addPost(owner.ID)
	other := ms.addPost(owner.ID)
	ms.addComment(post.ID, owner.ID)
	ms.addComment(post.ID, owner.ID)
	ms.addComment(other.ID, owner.ID)

	comments, err := commentSvc.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}
