package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/media"
	"github.com/minglehq/mingle/models"
	"github.com/minglehq/mingle/store"
)

// memStore is an in-memory stand-in for the Mongo gateways so the workflow
// logic can be exercised without a database.
type memStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	posts    map[primitive.ObjectID]*models.Post
	comments map[primitive.ObjectID]*models.Comment

	// failPush["users/liked_posts"] etc. makes the matching push fail once.
	failPush map[string]error

	// failUserInsert makes the next user insert return this error.
	failUserInsert error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[primitive.ObjectID]*models.User{},
		posts:    map[primitive.ObjectID]*models.Post{},
		comments: map[primitive.ObjectID]*models.Comment{},
		failPush: map[string]error{},
	}
}

func (m *memStore) addUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{
		ID:            primitive.NewObjectID(),
		Posts:         []primitive.ObjectID{},
		Comments:      []primitive.ObjectID{},
		LikedPosts:    []primitive.ObjectID{},
		LikedComments: []primitive.ObjectID{},
		Followers:     []primitive.ObjectID{},
		Following:     []primitive.ObjectID{},
	}
	u.Username = "user-" + u.ID.Hex()[:8]
	m.users[u.ID] = u
	return u
}

func (m *memStore) addPost(owner primitive.ObjectID, photos ...models.Media) *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Post{
		ID:       primitive.NewObjectID(),
		UserID:   owner,
		Title:    "title",
		Content:  "content",
		Photos:   photos,
		Videos:   []models.Media{},
		Likes:    []primitive.ObjectID{},
		Comments: []primitive.ObjectID{},
	}
	m.posts[p.ID] = p
	if u, ok := m.users[owner]; ok {
		u.Posts = append(u.Posts, p.ID)
	}
	return p
}

func (m *memStore) addComment(postID, author primitive.ObjectID) *models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Comment{
		ID:      primitive.NewObjectID(),
		PostID:  postID,
		UserID:  author,
		Content: "a comment",
		Likes:   []primitive.ObjectID{},
	}
	m.comments[c.ID] = c
	if p, ok := m.posts[postID]; ok {
		p.Comments = append(p.Comments, c.ID)
	}
	if u, ok := m.users[author]; ok {
		u.Comments = append(u.Comments, c.ID)
	}
	return c
}

func removeID(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (m *memStore) userField(u *models.User, field string) *[]primitive.ObjectID {
	switch field {
	case store.FieldPosts:
		return &u.Posts
	case store.FieldComments:
		return &u.Comments
	case store.FieldLikedPosts:
		return &u.LikedPosts
	case store.FieldLikedComments:
		return &u.LikedComments
	case store.FieldFollowers:
		return &u.Followers
	case store.FieldFollowing:
		return &u.Following
	}
	panic("unknown user field " + field)
}

func (m *memStore) pushErr(col, field string) error {
	if err, ok := m.failPush[col+"/"+field]; ok {
		delete(m.failPush, col+"/"+field)
		return err
	}
	return nil
}

// memUsers implements store.UserStore over memStore.
type memUsers struct{ s *memStore }

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return *u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m *memUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username || u.Email == email {
			return *u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m *memUsers) SearchByUsername(_ context.Context, fragment string, limit int64) ([]models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.User
	for _, u := range m.s.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(fragment)) {
			out = append(out, *u)
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memUsers) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) Insert(_ context.Context, user models.User) (primitive.ObjectID, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.failUserInsert; err != nil {
		m.s.failUserInsert = nil
		return primitive.NilObjectID, err
	}
	user.ID = primitive.NewObjectID()
	m.s.users[user.ID] = &user
	return user.ID, nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.s.users, id)
	return nil
}

func (m *memUsers) Push(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.pushErr("users", field); err != nil {
		return err
	}
	u, ok := m.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	arr := m.s.userField(u, field)
	*arr = append(*arr, value)
	return nil
}

func (m *memUsers) Pull(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	arr := m.s.userField(u, field)
	*arr = removeID(*arr, value)
	return nil
}

func (m *memUsers) PullFromAll(_ context.Context, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		arr := m.s.userField(u, field)
		*arr = removeID(*arr, value)
	}
	return nil
}

func (m *memUsers) HasInSet(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return false, store.ErrNotFound
	}
	for _, v := range *m.s.userField(u, field) {
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Count(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.users)), nil
}

// memPosts implements store.PostStore over memStore.
type memPosts struct{ s *memStore }

func (m *memPosts) FindByID(_ context.Context, id primitive.ObjectID) (models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	return *p, nil
}

func (m *memPosts) FindRecent(_ context.Context, limit int64) ([]models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Post
	for _, p := range m.s.posts {
		out = append(out, *p)
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memPosts) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Post
	for _, p := range m.s.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPosts) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.s.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPosts) Insert(_ context.Context, post models.Post) (primitive.ObjectID, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	m.s.posts[post.ID] = &post
	return post.ID, nil
}

func (m *memPosts) Update(_ context.Context, id primitive.ObjectID, upd store.PostUpdate) (models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	p.Title = upd.Title
	p.Content = upd.Content
	p.Photos = upd.Photos
	p.Videos = upd.Videos
	return *p, nil
}

func (m *memPosts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.s.posts, id)
	return nil
}

func (m *memPosts) Push(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.pushErr("posts", field); err != nil {
		return err
	}
	p, ok := m.s.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	switch field {
	case store.FieldLikes:
		p.Likes = append(p.Likes, value)
	case store.FieldComments:
		p.Comments = append(p.Comments, value)
	default:
		panic("unknown post field " + field)
	}
	return nil
}

func (m *memPosts) Pull(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	switch field {
	case store.FieldLikes:
		p.Likes = removeID(p.Likes, value)
	case store.FieldComments:
		p.Comments = removeID(p.Comments, value)
	default:
		panic("unknown post field " + field)
	}
	return nil
}

func (m *memPosts) Count(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.posts)), nil
}

// memComments implements store.CommentStore over memStore.
type memComments struct{ s *memStore }

func (m *memComments) FindByID(_ context.Context, id primitive.ObjectID) (models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.comments[id]
	if !ok {
		return models.Comment{}, store.ErrNotFound
	}
	return *c, nil
}

func (m *memComments) FindByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Comment
	for _, c := range m.s.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memComments) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Comment
	for _, c := range m.s.comments {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memComments) Insert(_ context.Context, comment models.Comment) (primitive.ObjectID, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	m.s.comments[comment.ID] = &comment
	return comment.ID, nil
}

func (m *memComments) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.comments[id]
	if !ok {
		return models.Comment{}, store.ErrNotFound
	}
	c.Content = content
	return *c, nil
}

func (m *memComments) Delete(_ context.Context, id primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.s.comments, id)
	return nil
}

func (m *memComments) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, c := range m.s.comments {
		if c.PostID == postID {
			delete(m.s.comments, id)
			n++
		}
	}
	return n, nil
}

func (m *memComments) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, c := range m.s.comments {
		if c.UserID == userID {
			delete(m.s.comments, id)
			n++
		}
	}
	return n, nil
}

func (m *memComments) Push(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.pushErr("comments", field); err != nil {
		return err
	}
	c, ok := m.s.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	if field != store.FieldLikes {
		panic("unknown comment field " + field)
	}
	c.Likes = append(c.Likes, value)
	return nil
}

func (m *memComments) Pull(_ context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	if field != store.FieldLikes {
		panic("unknown comment field " + field)
	}
	c.Likes = removeID(c.Likes, value)
	return nil
}

func (m *memComments) Count(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.comments)), nil
}

// fakeMedia records uploads and deletes. Paths listed in failUploads error on
// upload; ids in failDeletes error on delete.
type fakeMedia struct {
	mu          sync.Mutex
	assets      map[string]string // id -> url
	uploads     []string
	deletes     []string
	failUploads map[string]bool
	failDeletes map[string]bool
	nextID      int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		assets:      map[string]string{},
		failUploads: map[string]bool{},
		failDeletes: map[string]bool{},
	}
}

func (f *fakeMedia) Upload(_ context.Context, localPath string) (media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, localPath)
	if f.failUploads[localPath] {
		return media.Asset{}, fmt.Errorf("upload %s: backend unavailable", localPath)
	}
	f.nextID++
	id := fmt.Sprintf("asset-%d", f.nextID)
	url := "https://cdn.example.com/" + id
	f.assets[id] = url
	return media.Asset{URL: url, ID: id}, nil
}

func (f *fakeMedia) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.failDeletes[id] {
		return false, fmt.Errorf("delete %s: backend unavailable", id)
	}
	if _, ok := f.assets[id]; !ok {
		return false, nil
	}
	delete(f.assets, id)
	return true, nil
}

func (f *fakeMedia) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assets)
}

// seedAsset registers an asset as if it had been uploaded earlier.
func (f *fakeMedia) seedAsset(id string) models.Media {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.example.com/" + id
	f.assets[id] = url
	return models.Media{URL: url, MediaID: id}
}

// newTestServices wires the whole service layer on in-memory fakes.
func newTestServices() (*memStore, *fakeMedia, *PostService, *CommentService, *UserService) {
	ms := newMemStore()
	fm := newFakeMedia()
	users := &memUsers{s: ms}
	posts := &memPosts{s: ms}
	comments := &memComments{s: ms}
	postSvc := NewPostService(users, posts, comments, fm)
	commentSvc := NewCommentService(users, posts, comments)
	userSvc := NewUserService(users, posts, comments, fm, postSvc)
	return ms, fm, postSvc, commentSvc, userSvc
}
