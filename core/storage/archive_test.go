package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"guildkeeper/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedArchive(client Client) *Archive {
	a := NewArchive(client, "reports")
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestArchive_EnsureBucket(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(true, nil)

		assert.NoError(t, fixedArchive(client).EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "reports", mock.Anything).Return(nil)

		assert.NoError(t, fixedArchive(client).EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "reports").Return(false, errors.New("denied"))

		err := fixedArchive(client).EnsureBucket(context.Background())
		assert.ErrorContains(t, err, "denied")
	})
}

func TestArchive_Put(t *testing.T) {
	client := new(mocks.Client)
	var body string
	client.On("PutObject", mock.Anything, "reports", "sync/1/20240501T120000.000000000Z.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			body = string(data)
		}).
		Return(minio.UploadInfo{}, nil)

	key, err := fixedArchive(client).Put(context.Background(), "sync/1", map[string]int{"created": 2})
	require.NoError(t, err)
	assert.Equal(t, "sync/1/20240501T120000.000000000Z.json", key)
	assert.JSONEq(t, `{"created": 2}`, body)
}

func TestArchive_Get(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "reports", "k.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(`{"created": 3}`)), nil)

	var out map[string]int
	require.NoError(t, fixedArchive(client).Get(context.Background(), "k.json", &out))
	assert.Equal(t, 3, out["created"])
}

func listing(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestArchive_Prune(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).
		Return(listing("sync/1/c.json", "sync/1/a.json", "sync/1/b.json"))

	var removed []string
	client.On("RemoveObjects", mock.Anything, "reports", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for obj := range args.Get(2).(<-chan minio.ObjectInfo) {
				removed = append(removed, obj.Key)
			}
		}).
		Return(nil)

	n, err := fixedArchive(client).Prune(context.Background(), "sync/1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"sync/1/a.json", "sync/1/b.json"}, removed)
}

func TestArchive_PrunePartialFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).
		Return(listing("sync/1/a.json", "sync/1/b.json", "sync/1/c.json", "sync/1/d.json"))

	failures := make(chan minio.RemoveObjectError, 2)
	failures <- minio.RemoveObjectError{ObjectName: "sync/1/a.json", Err: errors.New("denied")}
	failures <- minio.RemoveObjectError{ObjectName: "sync/1/b.json", Err: errors.New("denied")}
	close(failures)
	client.On("RemoveObjects", mock.Anything, "reports", mock.Anything, mock.Anything).
		Return((<-chan minio.RemoveObjectError)(failures))

	n, err := fixedArchive(client).Prune(context.Background(), "sync/1", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync/1/a.json")
	assert.Contains(t, err.Error(), "sync/1/b.json")
	assert.Equal(t, 1, n)
	assert.Empty(t, failures)
}

func TestArchive_PruneNothingToDo(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "reports", mock.Anything).Return(listing("a.json"))

	n, err := fixedArchive(client).Prune(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Zero(t, n)
	client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
