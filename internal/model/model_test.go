package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"normal-file", 200, "normal-file"},
		{"file:with:colons", 200, "filewithcolons"},
		{"file<with>brackets", 200, "filewithbrackets"},
		{"file/with\\slashes", 200, "filewithslashes"},
		{"file|with|pipes", 200, "filewithpipes"},
		{"file?with*wildcards", 200, "filewithwildcards"},
		{"file\"with\"quotes", 200, "filewithquotes"},
		{"  ..dotted name..  ", 200, "dotted name"},
		{"", 200, "Unknown"},
		{"?*", 200, "Unknown"},
		{"abcdef", 3, "abc"},
		{"şarkı adı", 4, "şark"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestSanitizeASCII(t *testing.T) {
	assert.Equal(t, "Muslum Gurses", SanitizeASCII("Müslüm Gürses", 200))
	assert.Equal(t, "Unknown", SanitizeASCII("", 200))
}

func TestCollectionDirName(t *testing.T) {
	long := strings.Repeat("a", 150)
	assert.Len(t, CollectionDirName(long), MaxCollectionNameLength)
	assert.Equal(t, "Best Of", CollectionDirName("Best: Of"))
}

func TestStateStatus(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Pending(), "Beklemede"},
		{Skipped(), "Atlandı (Mevcut)"},
		{Found(), "Bulundu..."},
		{Starting(), "İndiriliyor..."},
		{Downloading(0), "%0"},
		{Downloading(42.99), "%42"},
		{Downloading(150), "%100"},
		{Downloading(-3), "%0"},
		{Tagging(), "Tag yazılıyor..."},
		{Completed(), "Tamamlandı"},
		{Failed(""), "Hata"},
		{Failed("Video özel"), "Hata: Video özel"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateClassification(t *testing.T) {
	assert.True(t, Completed().IsTerminal())
	assert.True(t, Skipped().IsTerminal())
	assert.True(t, Failed("x").IsTerminal())
	assert.False(t, Pending().IsTerminal())
	assert.False(t, Downloading(10).IsTerminal())

	assert.True(t, Found().IsActive())
	assert.True(t, Tagging().IsActive())
	assert.False(t, Pending().IsActive())

	assert.True(t, Skipped().IsSuccess())
	assert.False(t, Failed("").IsSuccess())
}

func TestNewQueueItem(t *testing.T) {
	a := NewQueueItem(KindVideo, "https://youtu.be/x", Metadata{Title: "T"}, false)
	b := NewQueueItem(KindVideo, "https://youtu.be/x", Metadata{Title: "T"}, false)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Beklemede", a.Status())
	assert.Equal(t, PhasePending, a.State.Phase)
}

func TestMetadataHasKnownIdentity(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want bool
	}{
		{"real", Metadata{Title: "Song", Artist: "Band"}, true},
		{"placeholder title", Metadata{Title: UnknownTrack, Artist: "Band"}, false},
		{"bare unknown title", Metadata{Title: "Unknown", Artist: "Band"}, false},
		{"placeholder artist", Metadata{Title: "Song", Artist: UnknownArtist}, false},
		{"empty artist", Metadata{Title: "Song"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.HasKnownIdentity())
		})
	}
}

func TestMetadataIsEmpty(t *testing.T) {
	assert.True(t, Metadata{}.IsEmpty())
	assert.False(t, Metadata{TrackNo: 1}.IsEmpty())
}
