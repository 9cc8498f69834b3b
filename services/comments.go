package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/models"
	"github.com/minglehq/mingle/store"
	"github.com/minglehq/mingle/utils"
)

// CommentService orchestrates the comment consistency workflows. A comment is
// referenced from both the owning post's and the author's comments sets;
// create and delete maintain both references with independent writes.
type CommentService struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
}

// NewCommentService creates a CommentService.
func NewCommentService(users store.UserStore, posts store.PostStore, comments store.CommentStore) *CommentService {
	return &CommentService{users: users, posts: posts, comments: comments}
}

// Create inserts a comment under the post and appends its id to the post's
// and the author's comments sets.
func (s *CommentService) Create(ctx context.Context, postID, userID primitive.ObjectID, content string) (models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, required("content")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return models.Comment{}, mapStoreErr(err)
	}

	comment := models.Comment{
		PostID:    post.ID,
		UserID:    userID,
		Content:   content,
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}
	id, err := s.comments.Insert(ctx, comment)
	if err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	comment.ID = id

	if err := s.posts.Push(ctx, post.ID, store.FieldComments, id); err != nil {
		return models.Comment{}, fmt.Errorf("append comment to post: %w", err)
	}
	if err := s.users.Push(ctx, userID, store.FieldComments, id); err != nil {
		utils.Sugar.Errorw("comment created but author back-reference update failed",
			"comment_id", id.Hex(), "user_id", userID.Hex(), "error", err)
		return models.Comment{}, fmt.Errorf("append comment to user: %w", err)
	}

	return comment, nil
}

// Delete removes a comment and pulls its id from the owning post's and the
// author's comments sets. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, commentID, requesterID primitive.ObjectID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return mapStoreErr(err)
	}
	if comment.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return mapStoreErr(err)
	}

	if err := s.users.Pull(ctx, comment.UserID, store.FieldComments, commentID); err != nil {
		utils.Sugar.Errorw("comment deleted but author back-reference update failed",
			"comment_id", commentID.Hex(), "error", err)
		return fmt.Errorf("pull comment from user: %w", err)
	}
	if err := s.posts.Pull(ctx, comment.PostID, store.FieldComments, commentID); err != nil {
		utils.Sugar.Errorw("comment deleted but post back-reference update failed",
			"comment_id", commentID.Hex(), "post_id", comment.PostID.Hex(), "error", err)
		return fmt.Errorf("pull comment from post: %w", err)
	}
	return nil
}

// Edit updates the comment content. Only the author may edit.
func (s *CommentService) Edit(ctx context.Context, commentID, requesterID primitive.ObjectID, content string) (models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, required("content")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, mapStoreErr(err)
	}
	if comment.UserID != requesterID {
		return models.Comment{}, ErrForbidden
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, content)
	if err != nil {
		return models.Comment{}, mapStoreErr(err)
	}
	return updated, nil
}

// Like records a like on a comment. A repeated like is a success no-op
// reported through the second return value.
func (s *CommentService) Like(ctx context.Context, commentID, userID primitive.ObjectID) (models.Comment, bool, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, false, mapStoreErr(err)
	}

	if utils.ContainsObjectID(comment.Likes, userID) {
		return comment, true, nil
	}

	if err := s.comments.Push(ctx, commentID, store.FieldLikes, userID); err != nil {
		return models.Comment{}, false, fmt.Errorf("push like to comment: %w", err)
	}
	if err := s.users.Push(ctx, userID, store.FieldLikedComments, commentID); err != nil {
		utils.Sugar.Errorw("comment liked but user back-reference update failed",
			"comment_id", commentID.Hex(), "user_id", userID.Hex(), "error", err)
		return models.Comment{}, false, fmt.Errorf("push like to user: %w", err)
	}

	comment.Likes = append(comment.Likes, userID)
	return comment, false, nil
}

// Unlike removes a like unconditionally.
func (s *CommentService) Unlike(ctx context.Context, commentID, userID primitive.ObjectID) error {
	if _, err := s.comments.FindByID(ctx, commentID); err != nil {
		return mapStoreErr(err)
	}
	if err := s.comments.Pull(ctx, commentID, store.FieldLikes, userID); err != nil {
		return fmt.Errorf("pull like from comment: %w", err)
	}
	if err := s.users.Pull(ctx, userID, store.FieldLikedComments, commentID); err != nil {
		return fmt.Errorf("pull like from user: %w", err)
	}
	return nil
}

// ListByPost returns every comment under the post.
func (s *CommentService) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.comments.FindByPost(ctx, postID)
}

// ListByUser returns every comment authored by the user.
func (s *CommentService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.comments.FindByUser(ctx, userID)
}
