package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyConstruction(t *testing.T) {
	assert.Equal(t, "original-images/alice/cat.jpg", OriginalKey("alice", "cat.jpg"))
	assert.Equal(t, "resized-images/alice/cat.jpg", ResizedKey("alice", "cat.jpg"))
}

func TestDerivedKey(t *testing.T) {
	t.Run("maps original onto resized preserving owner and filename", func(t *testing.T) {
		derived, err := DerivedKey("original-images/alice/cat.jpg")
		assert.NoError(t, err)
		assert.Equal(t, "resized-images/alice/cat.jpg", derived)
	})

	t.Run("rejects keys outside the original prefix", func(t *testing.T) {
		_, err := DerivedKey("resized-images/alice/cat.jpg")
		assert.Error(t, err)

		_, err = DerivedKey("random/alice/cat.jpg")
		assert.Error(t, err)
	})

	t.Run("preserves nested filename suffix bit-for-bit", func(t *testing.T) {
		derived, err := DerivedKey("original-images/alice/albums/2024/cat.jpg")
		assert.NoError(t, err)
		assert.Equal(t, "resized-images/alice/albums/2024/cat.jpg", derived)
	})
}

func TestOwner(t *testing.T) {
	tests := []struct {
		key     string
		owner   string
		wantErr bool
	}{
		{"original-images/alice/cat.jpg", "alice", false},
		{"resized-images/bob/dog.png", "bob", false},
		{"original-images/alice", "", true},
		{"original-images//cat.jpg", "", true},
		{"other-prefix/alice/cat.jpg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		owner, err := Owner(tt.key)
		if tt.wantErr {
			assert.Error(t, err, "key %q", tt.key)
		} else {
			assert.NoError(t, err, "key %q", tt.key)
			assert.Equal(t, tt.owner, owner)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, ContentTypeJPEG, ContentTypeForKey("resized-images/a/x.jpg"))
	assert.Equal(t, ContentTypeJPEG, ContentTypeForKey("resized-images/a/x.JPEG"))
	assert.Equal(t, ContentTypePNG, ContentTypeForKey("original-images/a/x.png"))
	assert.Equal(t, ContentTypeUnknown, ContentTypeForKey("original-images/a/x.webp"))
	assert.Equal(t, ContentTypeUnknown, ContentTypeForKey("original-images/a/noext"))
}
