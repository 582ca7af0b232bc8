package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupLocalStorage(t *testing.T) *LocalStorage {
	fs, err := NewLocalStorage(t.TempDir(), "/uploads", zap.NewNop())
	require.NoError(t, err, "Failed to create LocalStorage")
	return fs
}

// newTestFileHeader builds a FileHeader the way gin would parse it from a request.
func newTestFileHeader(t *testing.T, fieldname, filename, content, contentType string) *multipart.FileHeader {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldname, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)

	files := form.File[fieldname]
	require.NotEmpty(t, files, "No files found for fieldname %s", fieldname)
	return files[0]
}

func TestLocalStorage_Save_Success(t *testing.T) {
	fs := setupLocalStorage(t)
	fh := newTestFileHeader(t, "photo", "me.jpg", "jpeg bytes", "image/jpeg")

	url, err := fs.Save(context.Background(), fh, "profiles/u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/profiles/u1/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	key := strings.TrimPrefix(url, "/uploads/")
	saved, err := os.ReadFile(filepath.Join(fs.Root(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(saved))
}

func TestLocalStorage_Save_ExtensionFromContentType(t *testing.T) {
	fs := setupLocalStorage(t)
	fh := newTestFileHeader(t, "photo", "noext", "png bytes", "image/png")

	url, err := fs.Save(context.Background(), fh, "profiles")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestLocalStorage_Save_UnsupportedType(t *testing.T) {
	fs := setupLocalStorage(t)
	fh := newTestFileHeader(t, "photo", "notes.txt", "text", "text/plain")

	_, err := fs.Save(context.Background(), fh, "profiles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLocalStorage_Save_RejectsTraversal(t *testing.T) {
	fs := setupLocalStorage(t)
	fh := newTestFileHeader(t, "photo", "me.png", "x", "image/png")

	_, err := fs.Save(context.Background(), fh, "../outside")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid subDir")
}

func TestLocalStorage_Delete(t *testing.T) {
	fs := setupLocalStorage(t)
	fh := newTestFileHeader(t, "photo", "me.gif", "gif", "image/gif")
	url, err := fs.Save(context.Background(), fh, "profiles")
	require.NoError(t, err)

	key := strings.TrimPrefix(url, "/uploads/")
	require.NoError(t, fs.Delete(context.Background(), key))
	_, statErr := os.Stat(filepath.Join(fs.Root(), key))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, fs.Delete(context.Background(), "profiles/missing.png"), "missing file is not an error")
	assert.Error(t, fs.Delete(context.Background(), "../etc/passwd"))
	assert.Error(t, fs.Delete(context.Background(), ""))
}

type mockObjectPutter struct {
	mock.Mock
}

func (m *mockObjectPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectPutter) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func TestS3Storage_Save(t *testing.T) {
	client := new(mockObjectPutter)
	store := &S3Storage{
		client: client,
		opts:   S3Options{Bucket: "photos", PublicBaseURL: "https://cdn.example.org/"},
		logger: zap.NewNop(),
	}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "photos" &&
			strings.HasPrefix(*in.Key, "profiles/u1/") &&
			*in.ContentType == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	fh := newTestFileHeader(t, "photo", "me.PNG", "png", "image/png")
	url, err := store.Save(context.Background(), fh, "profiles/u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.org/profiles/u1/"))
	client.AssertExpectations(t)
}

func TestS3Storage_Save_UploadError(t *testing.T) {
	client := new(mockObjectPutter)
	store := &S3Storage{client: client, opts: S3Options{Bucket: "photos"}, logger: zap.NewNop()}
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

	fh := newTestFileHeader(t, "photo", "me.jpg", "jpg", "image/jpeg")
	_, err := store.Save(context.Background(), fh, "profiles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
