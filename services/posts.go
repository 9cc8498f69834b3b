package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/media"
	"github.com/minglehq/mingle/models"
	"github.com/minglehq/mingle/store"
	"github.com/minglehq/mingle/utils"
)

// PostService orchestrates the post consistency workflows: create, edit,
// delete, like and unlike, plus the read paths around them.
type PostService struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
	media    media.Store
}

// NewPostService creates a PostService.
func NewPostService(users store.UserStore, posts store.PostStore, comments store.CommentStore, m media.Store) *PostService {
	return &PostService{users: users, posts: posts, comments: comments, media: m}
}

// EditPostRequest carries the optional replacement values for an edit. Empty
// title/content retain the stored values; a non-empty path list replaces the
// whole media list of that kind, an empty one retains it.
type EditPostRequest struct {
	Title      string
	Content    string
	PhotoPaths []string
	VideoPaths []string
}

// Create uploads the given local media files, inserts the post and appends its
// id to the owner's posts set. Individual upload failures are dropped, not
// fatal: the post is created with whatever uploads succeeded. There is no
// compensation if the owner update fails after the post was inserted.
func (s *PostService) Create(ctx context.Context, ownerID primitive.ObjectID, title, content string, photoPaths, videoPaths []string) (models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Post{}, required("title")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, required("content")
	}

	photos := s.uploadAll(ctx, photoPaths)
	videos := s.uploadAll(ctx, videoPaths)

	now := time.Now()
	post := models.Post{
		UserID:    ownerID,
		Title:     title,
		Content:   content,
		Photos:    photos,
		Videos:    videos,
		Likes:     []primitive.ObjectID{},
		Comments:  []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.posts.Insert(ctx, post)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	post.ID = id

	if err := s.users.Push(ctx, ownerID, store.FieldPosts, id); err != nil {
		// The post exists but the owner's back-reference does not. Accepted
		// inconsistency: surface the failure without deleting the post.
		utils.Sugar.Errorw("post created but owner back-reference update failed",
			"post_id", id.Hex(), "user_id", ownerID.Hex(), "error", err)
		return models.Post{}, fmt.Errorf("append post to owner: %w", err)
	}

	return post, nil
}

// Edit applies an owner-only update. Supplying photos (videos) deletes every
// existing asset of that kind from the media store and uploads the new ones:
// an unconditional full replace, never an incremental diff.
func (s *PostService) Edit(ctx context.Context, postID, requesterID primitive.ObjectID, req EditPostRequest) (models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return models.Post{}, mapStoreErr(err)
	}
	if post.UserID != requesterID {
		return models.Post{}, ErrForbidden
	}

	photos := post.Photos
	if len(req.PhotoPaths) > 0 {
		if err := s.deleteAssets(ctx, mediaIDs(post.Photos)); err != nil {
			return models.Post{}, fmt.Errorf("replace photos: %w", err)
		}
		photos = s.uploadAll(ctx, req.PhotoPaths)
	}

	videos := post.Videos
	if len(req.VideoPaths) > 0 {
		if err := s.deleteAssets(ctx, mediaIDs(post.Videos)); err != nil {
			return models.Post{}, fmt.Errorf("replace videos: %w", err)
		}
		videos = s.uploadAll(ctx, req.VideoPaths)
	}

	upd := store.PostUpdate{
		Title:   post.Title,
		Content: post.Content,
		Photos:  photos,
		Videos:  videos,
	}
	if t := strings.TrimSpace(req.Title); t != "" {
		upd.Title = t
	}
	if c := strings.TrimSpace(req.Content); c != "" {
		upd.Content = c
	}

	updated, err := s.posts.Update(ctx, postID, upd)
	if err != nil {
		return models.Post{}, mapStoreErr(err)
	}
	return updated, nil
}

// Delete removes a post and fans out the cleanup: media assets (best-effort,
// per-item results logged), the post document, the owner's and every other
// user's posts back-reference, and all comments under the post. The cleanup
// steps are independent; a failure in one does not roll back the others.
func (s *PostService) Delete(ctx context.Context, postID, requesterID primitive.ObjectID) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return mapStoreErr(err)
	}
	if post.UserID != requesterID {
		return ErrForbidden
	}

	results := media.DeleteAll(ctx, s.media, post.MediaIDs())
	for _, r := range media.Failures(results) {
		utils.Sugar.Warnw("post media delete failed",
			"post_id", postID.Hex(), "media_id", r.ID, "error", r.Err)
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return mapStoreErr(err)
	}

	var errs []error
	if err := s.users.Pull(ctx, post.UserID, store.FieldPosts, postID); err != nil {
		errs = append(errs, fmt.Errorf("pull post from owner: %w", err))
	}
	if err := s.users.PullFromAll(ctx, store.FieldPosts, postID); err != nil {
		errs = append(errs, fmt.Errorf("pull post from users: %w", err))
	}
	if n, err := s.comments.DeleteByPost(ctx, postID); err != nil {
		errs = append(errs, fmt.Errorf("delete post comments: %w", err))
	} else if n > 0 {
		utils.Sugar.Infow("deleted comments of removed post", "post_id", postID.Hex(), "count", n)
	}
	for _, e := range errs {
		utils.Sugar.Errorw("post delete cleanup failed", "post_id", postID.Hex(), "error", e)
	}
	return errors.Join(errs...)
}

// Like records a like. A repeated like by the same user is a success no-op
// reported through the second return value, with zero mutations.
func (s *PostService) Like(ctx context.Context, postID, userID primitive.ObjectID) (models.Post, bool, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return models.Post{}, false, mapStoreErr(err)
	}

	already, err := s.users.HasInSet(ctx, userID, store.FieldLikedPosts, postID)
	if err != nil {
		return models.Post{}, false, fmt.Errorf("check liked posts: %w", err)
	}
	if already {
		return post, true, nil
	}

	// Two independent writes, not a transaction.
	if err := s.posts.Push(ctx, postID, store.FieldLikes, userID); err != nil {
		return models.Post{}, false, fmt.Errorf("push like to post: %w", err)
	}
	if err := s.users.Push(ctx, userID, store.FieldLikedPosts, postID); err != nil {
		utils.Sugar.Errorw("post liked but user back-reference update failed",
			"post_id", postID.Hex(), "user_id", userID.Hex(), "error", err)
		return models.Post{}, false, fmt.Errorf("push like to user: %w", err)
	}

	post.Likes = append(post.Likes, userID)
	return post, false, nil
}

// Unlike removes a like unconditionally; pulling a value that is not present
// is an idempotent no-op.
func (s *PostService) Unlike(ctx context.Context, postID, userID primitive.ObjectID) error {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return mapStoreErr(err)
	}
	if err := s.posts.Pull(ctx, postID, store.FieldLikes, userID); err != nil {
		return fmt.Errorf("pull like from post: %w", err)
	}
	if err := s.users.Pull(ctx, userID, store.FieldLikedPosts, postID); err != nil {
		return fmt.Errorf("pull like from user: %w", err)
	}
	return nil
}

// IsLiked reports whether the user appears in the post's likes set.
func (s *PostService) IsLiked(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return utils.ContainsObjectID(post.Likes, userID), nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, postID primitive.ObjectID) (models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return models.Post{}, mapStoreErr(err)
	}
	return post, nil
}

// List returns the most recent posts up to limit.
func (s *PostService) List(ctx context.Context, limit int64) ([]models.Post, error) {
	return s.posts.FindRecent(ctx, limit)
}

// ListByUser returns every post owned by the user.
func (s *PostService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.posts.FindByUser(ctx, userID)
}

// ListLiked returns the posts recorded in the user's liked-posts set.
func (s *PostService) ListLiked(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.posts.FindManyByIDs(ctx, user.LikedPosts)
}

// uploadAll uploads every path concurrently and keeps the successful results
// in submission order. Failed uploads are logged and dropped.
func (s *PostService) uploadAll(ctx context.Context, paths []string) []models.Media {
	if len(paths) == 0 {
		return []models.Media{}
	}

	slots := make([]*models.Media, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			asset, err := s.media.Upload(ctx, path)
			if err != nil {
				utils.Sugar.Warnw("media upload failed", "path", path, "error", err)
				return
			}
			slots[i] = &models.Media{URL: asset.URL, MediaID: asset.ID}
		}(i, path)
	}
	wg.Wait()

	uploaded := make([]models.Media, 0, len(paths))
	for _, m := range slots {
		if m != nil {
			uploaded = append(uploaded, *m)
		}
	}
	return uploaded
}

// deleteAssets removes the given assets and fails on the first error. Used by
// the edit workflow, where a failed delete aborts the media replacement.
func (s *PostService) deleteAssets(ctx context.Context, ids []string) error {
	for _, r := range media.DeleteAll(ctx, s.media, ids) {
		if r.OK {
			continue
		}
		if r.Err != nil {
			return fmt.Errorf("delete media %s: %w", r.ID, r.Err)
		}
		return fmt.Errorf("delete media %s: asset not known", r.ID)
	}
	return nil
}

func mediaIDs(list []models.Media) []string {
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.MediaID)
	}
	return ids
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
