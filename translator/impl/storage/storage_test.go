package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedObject struct {
	bucket string
	object string
	data   []byte
}

type fakeClient struct {
	saved []savedObject
	err   error
}

func (f *fakeClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, savedObject{bucket: bucketName, object: objectName, data: data})
	return nil
}

func TestLocalSaveBytes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "translated_images")

	require.NoError(t, NewLocal().SaveBytes(context.Background(), dir, "nested/image_0.jpg", []byte("jpeg")))

	data, err := os.ReadFile(filepath.Join(dir, "image_0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestMirrorSaveBytes(t *testing.T) {
	primary := &fakeClient{}
	mirror := &fakeClient{}

	err := NewMirror(primary, mirror, "product-images", "run-1").SaveBytes(context.Background(), "out/translated_images", "image_0.png", []byte("png"))
	require.NoError(t, err)

	require.Len(t, primary.saved, 1)
	assert.Equal(t, "out/translated_images", primary.saved[0].bucket)
	require.Len(t, mirror.saved, 1)
	assert.Equal(t, "product-images", mirror.saved[0].bucket)
	assert.Equal(t, "run-1/translated_images/image_0.png", mirror.saved[0].object)
}

func TestMirrorIgnoresMirrorFailure(t *testing.T) {
	primary := &fakeClient{}
	mirror := &fakeClient{err: errors.New("permission denied")}

	err := NewMirror(primary, mirror, "product-images", "run-1").SaveBytes(context.Background(), "out", "image_0.png", []byte("png"))
	require.NoError(t, err)
	assert.Len(t, primary.saved, 1)
}

func TestMirrorReturnsPrimaryFailure(t *testing.T) {
	primary := &fakeClient{err: errors.New("disk full")}
	mirror := &fakeClient{}

	err := NewMirror(primary, mirror, "product-images", "run-1").SaveBytes(context.Background(), "out", "image_0.png", []byte("png"))
	assert.Error(t, err)
	assert.Empty(t, mirror.saved)
}
