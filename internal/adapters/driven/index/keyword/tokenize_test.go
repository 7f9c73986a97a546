package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"latin words are case folded", "MRI and CT", []string{"mri", "and", "ct"}},
		{"full width is folded", "ＣＴ检查", []string{"ct", "检", "检查", "查"}},
		{"han run gives unigrams and bigrams", "骨折", []string{"骨", "骨折", "折"}},
		{"punctuation splits runs", "骨折，治疗", []string{"骨", "骨折", "折", "治", "治疗", "疗"}},
		{"mixed scripts split", "L5椎弓", []string{"l5", "椎", "椎弓", "弓"}},
		{"empty", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.in))
		})
	}
}

func TestTermFrequencies(t *testing.T) {
	tf, n := termFrequencies("骨折 骨折 x")
	assert.Equal(t, 7, n)
	assert.Equal(t, 2, tf["骨折"])
	assert.Equal(t, 1, tf["x"])
}
