package s3backup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

type memoryBucket struct {
	objects map[string][]byte
	failKey string
}

func (u *memoryBucket) GetObject(_ context.Context, key string) ([]byte, error) {
	body, ok := u.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return body, nil
}

var testConfig = &Config{Prefix: DefaultPrefix}

func (u *memoryBucket) PutObject(_ context.Context, key string, body []byte, contentType string) (*UploadResult, error) {
	if key == u.failKey {
		return nil, errors.New("boom")
	}
	u.objects[key] = body
	return &UploadResult{ObjectKey: key, Size: int64(len(body)), ContentType: contentType}, nil
}

func TestObjectKey(t *testing.T) {
	ts := time.Date(2024, 3, 7, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "backups/2024/03/07/news-1709854200.json", testConfig.ObjectKey(KindNews, ts))

	nested := &Config{Prefix: "newsdesk/prod"}
	assert.Equal(t, "newsdesk/prod/2024/03/07/users-1709854200.json", nested.ObjectKey(KindUsers, ts))
}

func TestBackupAll(t *testing.T) {
	repos, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repos.News.Create(ctx, models.NewNews("Launch", "We launched", nil, time.Now())))
	user, err := models.CreateUser("bob", "pw", "", "")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(ctx, user))

	up := &memoryBucket{objects: map[string][]byte{}}
	now := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	results, err := BackupAll(ctx, repos, up, testConfig, now)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var news []models.News
	require.NoError(t, json.Unmarshal(up.objects[testConfig.ObjectKey(KindNews, now)], &news))
	require.Len(t, news, 1)
	assert.Equal(t, "Launch", news[0].Title)

	var questions []models.Question
	require.NoError(t, json.Unmarshal(up.objects[testConfig.ObjectKey(KindQuestions, now)], &questions))
	assert.Empty(t, questions)

	var users []models.User
	require.NoError(t, json.Unmarshal(up.objects[testConfig.ObjectKey(KindUsers, now)], &users))
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Login)
}

func TestBackupAll_StopsOnUploadFailure(t *testing.T) {
	repos, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)

	now := time.Now()
	up := &memoryBucket{objects: map[string][]byte{}, failKey: testConfig.ObjectKey(KindQuestions, now)}
	results, err := BackupAll(context.Background(), repos, up, testConfig, now)
	assert.Error(t, err)
	assert.Len(t, results, 1)
	assert.NotContains(t, up.objects, testConfig.ObjectKey(KindUsers, now))
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantErr    bool
		wantPrefix string
		pathStyle  bool
	}{
		{
			name:       "disabled needs nothing",
			env:        map[string]string{"S3_BACKUP_ENABLED": "false"},
			wantPrefix: DefaultPrefix,
		},
		{
			name:    "enabled without credentials",
			env:     map[string]string{"S3_BACKUP_ENABLED": "true", "S3_BUCKET_NAME": "b"},
			wantErr: true,
		},
		{
			name: "enabled and complete",
			env: map[string]string{
				"S3_BACKUP_ENABLED": "true", "S3_BUCKET_NAME": "b",
				"S3_ACCESS_KEY_ID": "id", "S3_SECRET_ACCESS_KEY": "secret",
				"S3_BACKUP_PREFIX": "/newsdesk/prod/",
			},
			wantPrefix: "newsdesk/prod",
		},
		{
			name: "custom endpoint defaults to path style",
			env: map[string]string{
				"S3_BACKUP_ENABLED": "true", "S3_BUCKET_NAME": "b",
				"S3_ACCESS_KEY_ID": "id", "S3_SECRET_ACCESS_KEY": "secret",
				"S3_ENDPOINT_URL": "http://minio:9000/",
			},
			wantPrefix: DefaultPrefix,
			pathStyle:  true,
		},
		{
			name: "prefix escaping the bucket layout",
			env: map[string]string{
				"S3_BACKUP_ENABLED": "true", "S3_BUCKET_NAME": "b",
				"S3_ACCESS_KEY_ID": "id", "S3_SECRET_ACCESS_KEY": "secret",
				"S3_BACKUP_PREFIX": "../other",
			},
			wantErr: true,
		},
		{
			name: "empty prefix",
			env: map[string]string{
				"S3_BACKUP_ENABLED": "true", "S3_BUCKET_NAME": "b",
				"S3_ACCESS_KEY_ID": "id", "S3_SECRET_ACCESS_KEY": "secret",
				"S3_BACKUP_PREFIX": "/",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"S3_BACKUP_ENABLED", "S3_BUCKET_NAME", "S3_ACCESS_KEY_ID",
				"S3_SECRET_ACCESS_KEY", "S3_BACKUP_PREFIX", "S3_ENDPOINT_URL", "S3_FORCE_PATH_STYLE"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrefix, cfg.Prefix)
			assert.Equal(t, tt.pathStyle, cfg.ForcePathStyle)
		})
	}
}

func TestKindFromKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"backups/2024/03/07/news-1709854200.json", KindNews, false},
		{"x/questions-1.json", KindQuestions, false},
		{"users-1.json", KindUsers, false},
		{"backups/2024/03/07/images-1.json", "", true},
		{"backups/readme.txt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := KindFromKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)

	older := models.NewNews("Older", "o", nil, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, src.News.Create(ctx, older))
	launch := models.NewNews("Launch", "We launched", nil, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, src.News.Create(ctx, launch))
	require.NoError(t, src.News.AppendComment(ctx, launch.ID, models.NewComment("bob", "first", time.Now())))
	require.NoError(t, src.News.AppendComment(ctx, launch.ID, models.NewComment("ann", "second", time.Now())))
	require.NoError(t, src.Question.Create(ctx, models.NewQuestion("Ann", "ann@example.com", "Why?", time.Now())))
	admin, err := models.CreateUser("admin", "123", "", models.ROLE_ADMIN)
	require.NoError(t, err)
	require.NoError(t, src.User.Create(ctx, admin))
	bob, err := models.CreateUser("bob", "pw", "", "")
	require.NoError(t, err)
	require.NoError(t, src.User.Create(ctx, bob))

	store := &memoryBucket{objects: map[string][]byte{}}
	now := time.Now()
	results, err := BackupAll(ctx, src, store, testConfig, now)
	require.NoError(t, err)

	dst, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	want := map[string]int{KindNews: 2, KindQuestions: 1, KindUsers: 2}
	for _, r := range results {
		kind, err := KindFromKey(r.ObjectKey)
		require.NoError(t, err)
		n, err := Restore(ctx, dst, store, r.ObjectKey)
		require.NoError(t, err)
		assert.Equal(t, want[kind], n, kind)
	}

	news, err := dst.News.List(ctx)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "Launch", news[0].Title)
	assert.Equal(t, "07.03.2024", news[0].Date)
	require.Len(t, news[0].Comments, 2)
	assert.Equal(t, "first", news[0].Comments[0].Text)
	assert.Equal(t, "second", news[0].Comments[1].Text)
	assert.Equal(t, "Older", news[1].Title)

	users, err := dst.User.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Login)
	assert.True(t, users[0].IsAdmin())
	assert.Equal(t, "pw", users[1].Password)
}

func TestRestore_RefusesNonEmptyTarget(t *testing.T) {
	ctx := context.Background()
	dst, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, dst.News.Create(ctx, models.NewNews("Existing", "e", nil, time.Now())))

	key := testConfig.ObjectKey(KindNews, time.Now())
	store := &memoryBucket{objects: map[string][]byte{
		key: []byte(`[{"id":"1","title":"Old","content":"c","date":"01.01.2024","comments":[]}]`),
	}}

	_, err = Restore(ctx, dst, store, key)
	assert.ErrorIs(t, err, ErrTargetNotEmpty)

	news, err := dst.News.List(ctx)
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Existing", news[0].Title)
}

func TestRestore_MissingObject(t *testing.T) {
	dst, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)

	_, err = Restore(context.Background(), dst, &memoryBucket{objects: map[string][]byte{}}, "backups/x/news-1.json")
	assert.Error(t, err)
}
