package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

func newTestFileRepositories(t *testing.T) (*Repositories, string) {
	t.Helper()
	dir := t.TempDir()
	repos, err := NewFileRepositories(dir)
	require.NoError(t, err)
	return repos, dir
}

func TestNewFileRepositories_CreatesEmptyCollections(t *testing.T) {
	repos, dir := newTestFileRepositories(t)
	assert.Equal(t, DriverFile, repos.Driver)

	for _, name := range []string{NewsFile, QuestionsFile, UsersFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, "[]", strings.TrimSpace(string(data)), name)
	}

	news, err := repos.News.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, news)
	assert.NotNil(t, news)
}

func TestNewsFileRepository_CreatePutsNewestFirst(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	first := models.NewNews("A", "a", nil, time.Now())
	require.NoError(t, repos.News.Create(ctx, first))
	second := models.NewNews("B", "b", nil, time.Now())
	require.NoError(t, repos.News.Create(ctx, second))

	news, err := repos.News.List(ctx)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "B", news[0].Title)
	assert.Equal(t, "A", news[1].Title)
	assert.NotEqual(t, news[0].ID, news[1].ID)
	assert.Equal(t, []models.Comment{}, news[0].Comments)
}

func TestNewsFileRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repos.News.Create(ctx, models.NewNews(fmt.Sprintf("T%d", i), "c", nil, time.Now()))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	news, err := repos.News.List(ctx)
	require.NoError(t, err)
	require.Len(t, news, n)

	seen := make(map[string]bool, n)
	for _, item := range news {
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestNewsFileRepository_ConcurrentCommentsKeepPerClientOrder(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	post := models.NewNews("Launch", "We launched", nil, time.Now())
	require.NoError(t, repos.News.Create(ctx, post))

	const clients, perClient = 5, 8
	var wg sync.WaitGroup
	for c := 0; c < clients; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			for i := 0; i < perClient; i++ {
				comment := models.NewComment(fmt.Sprintf("client%d", c), fmt.Sprintf("%d", i), time.Now())
				assert.NoError(t, repos.News.AppendComment(ctx, post.ID, comment))
			}
		}(c)
	}
	wg.Wait()

	stored, err := repos.News.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, clients*perClient)

	next := make(map[string]int)
	for _, comment := range stored.Comments {
		assert.Equal(t, fmt.Sprintf("%d", next[comment.Author]), comment.Text)
		next[comment.Author]++
	}
}

func TestNewsFileRepository_AppendCommentUnknownNewsLeavesFileUntouched(t *testing.T) {
	repos, dir := newTestFileRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.News.Create(ctx, models.NewNews("A", "a", nil, time.Now())))
	before, err := os.ReadFile(filepath.Join(dir, NewsFile))
	require.NoError(t, err)

	err = repos.News.AppendComment(ctx, "does-not-exist", models.NewComment("bob", "hi", time.Now()))
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(filepath.Join(dir, NewsFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNewsFileRepository_GetByID(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	post := models.NewNews("A", "a", nil, time.Now())
	require.NoError(t, repos.News.Create(ctx, post))

	found, err := repos.News.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", found.Title)

	_, err = repos.News.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewsFileRepository_ReadsLegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := `[
  {"id": 1700000000000, "title": "Old", "content": "numeric id", "image": null, "date": "01.01.2024"},
  {"id": "1600000000000", "title": "Older", "content": "string id", "date": "01.01.2023", "comments": [{"author": "ann", "text": "hi", "date": "01.01.2023, 10:00:00"}]}
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, NewsFile), []byte(legacy), 0o644))

	repos, err := NewFileRepositories(dir)
	require.NoError(t, err)
	ctx := context.Background()

	news, err := repos.News.List(ctx)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "1700000000000", news[0].ID)
	assert.Nil(t, news[0].Image)
	assert.Len(t, news[1].Comments, 1)

	require.NoError(t, repos.News.AppendComment(ctx, "1700000000000", models.NewComment("bob", "first", time.Now())))
	found, err := repos.News.GetByID(ctx, "1700000000000")
	require.NoError(t, err)
	require.Len(t, found.Comments, 1)
	assert.Equal(t, "first", found.Comments[0].Text)

	// a new id must sort after every existing numeric id
	post := models.NewNews("New", "n", nil, time.UnixMilli(1500000000000))
	require.NoError(t, repos.News.Create(ctx, post))
	assert.Equal(t, "1700000000001", post.ID)
}

func TestNewsFileRepository_CorruptFile(t *testing.T) {
	repos, dir := newTestFileRepositories(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(dir, NewsFile), []byte("{not json"), 0o644))

	_, err := repos.News.List(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = repos.News.Count(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = repos.News.Create(ctx, models.NewNews("A", "a", nil, time.Now()))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	data, err := os.ReadFile(filepath.Join(dir, NewsFile))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestNewsFileRepository_EmptyFileIsEmptyCollection(t *testing.T) {
	repos, dir := newTestFileRepositories(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, NewsFile), nil, 0o644))

	news, err := repos.News.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, news)

	count, err := repos.News.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFileRepositories_NoTempFilesLeftBehind(t *testing.T) {
	repos, dir := newTestFileRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.News.Create(ctx, models.NewNews("A", "a", nil, time.Now())))
	require.NoError(t, repos.Question.Create(ctx, models.NewQuestion("Ann", "ann@example.com", "Why?", time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestFileRepositories_CanceledContext(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repos.News.Create(ctx, models.NewNews("A", "a", nil, time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuestionFileRepository_CreateAndList(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.Question.Create(ctx, models.NewQuestion("Ann", "ann@example.com", "First?", time.Now())))
	require.NoError(t, repos.Question.Create(ctx, models.NewQuestion("Bob", "+380000000", "Second?", time.Now())))

	questions, err := repos.Question.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Second?", questions[0].Question)
	assert.NotEmpty(t, questions[0].ID)
}

func TestUserFileRepository(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	count, err := repos.User.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	user, err := models.CreateUser("bob", "pw", "", "")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(ctx, user))

	dup, err := models.CreateUser("bob", "other", "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repos.User.Create(ctx, dup), ErrConflict)

	found, err := repos.User.GetByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "pw", found.Password)
	assert.Equal(t, models.ROLE_USER, found.Role)

	_, err = repos.User.GetByLogin(ctx, "Bob")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err = repos.User.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUserFileRepository_ConcurrentDuplicateRegistration(t *testing.T) {
	repos, _ := newTestFileRepositories(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, _ := models.CreateUser("carol", "pw", "", "")
			results <- repos.User.Create(ctx, user)
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	count, err := repos.User.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNextTimestampID(t *testing.T) {
	now := time.UnixMilli(1000)
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{"empty collection", nil, "1000"},
		{"older ids", []string{"10", "999"}, "1000"},
		{"same millisecond", []string{"1000"}, "1001"},
		{"ignores non numeric", []string{"abc", "64b7f0c2e1"}, "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextTimestampID(now, tt.existing))
		})
	}
}

func TestFactory_OpensOnce(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	f := NewFactory(DriverFile, func(ctx context.Context) (*Repositories, error) {
		calls++
		return NewFileRepositories(dir)
	})

	first, err := f.GetRepositories(context.Background())
	require.NoError(t, err)
	second, err := f.GetRepositories(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, DriverFile, f.Driver())
}

func TestFactory_UnknownDriver(t *testing.T) {
	f := NewFactory("postgres", nil)
	_, err := f.GetRepositories(context.Background())
	assert.Error(t, err)
}
