package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/cms-check/pkg/lifecycle"
)

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		ref  lifecycle.ContentRef
		want []string
	}{
		{
			name: "doc id first, then derived forms",
			ref:  lifecycle.ContentRef{RawID: "abc:en:published", DocID: "abc", Kind: lifecycle.KindImage},
			want: []string{"abc", "abc:en:draft", "abc:en:published"},
		},
		{
			name: "no doc id",
			ref:  lifecycle.ContentRef{RawID: "xyz:en:published", Kind: lifecycle.KindPage},
			want: []string{"xyz:en:draft", "xyz", "xyz:en:published"},
		},
		{
			name: "bare id with nothing to strip",
			ref:  lifecycle.ContentRef{RawID: "id1", Kind: lifecycle.KindUser},
			want: []string{"id1"},
		},
		{
			name: "draft id keeps its mode",
			ref:  lifecycle.ContentRef{RawID: "doc:fr:draft", Kind: lifecycle.KindFile},
			want: []string{"doc", "doc:fr:draft"},
		},
		{
			name: "doc id equal to bare id deduplicates",
			ref:  lifecycle.ContentRef{RawID: "q:en:published", DocID: "q", Kind: lifecycle.KindFile},
			want: []string{"q", "q:en:draft", "q:en:published"},
		},
		{
			name: "doc id only",
			ref:  lifecycle.ContentRef{DocID: "solo", Kind: lifecycle.KindGlobal},
			want: []string{"solo"},
		},
		{
			name: "doc id equal to raw id",
			ref:  lifecycle.ContentRef{RawID: "same", DocID: "same", Kind: lifecycle.KindImageTag},
			want: []string{"same"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lifecycle.Candidates(tt.ref)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestCandidatesNeverMutatesRef(t *testing.T) {
	ref := lifecycle.ContentRef{RawID: "abc:en:published", DocID: "abc", Kind: lifecycle.KindImage}
	_ = lifecycle.Candidates(ref)
	assert.Equal(t, "abc:en:published", ref.RawID)
	assert.Equal(t, "abc", ref.DocID)
}
