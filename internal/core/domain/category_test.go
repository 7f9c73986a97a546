package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryTable_Match_FirstEntryWins(t *testing.T) {
	table := DefaultCategoryTable()

	tests := []struct {
		name     string
		segments []string
		want     string
		ok       bool
	}{
		{name: "single keyword", segments: []string{"infection", "tb"}, want: "感染", ok: true},
		{name: "table order beats path order", segments: []string{"others", "fracture"}, want: "骨折", ok: true},
		{name: "substring is not a match", segments: []string{"fractures"}, ok: false},
		{name: "no segments", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Match(tt.segments)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryTable_LabelsDeduplicatedInOrder(t *testing.T) {
	table := NewCategoryTable(
		CategoryEntry{Keyword: "a", Label: "甲"},
		CategoryEntry{Keyword: "b", Label: "乙"},
		CategoryEntry{Keyword: "c", Label: "甲"},
		CategoryEntry{Keyword: "", Label: "丙"},
	)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"甲", "乙"}, table.Labels())
}

func TestCategoryTable_Immutable(t *testing.T) {
	table := DefaultCategoryTable()

	labels := table.Labels()
	labels[0] = "changed"
	entries := table.Entries()
	entries[0].Label = "changed"

	assert.Equal(t, "骨折", table.Labels()[0])
	assert.Equal(t, "骨折", table.Entries()[0].Label)
}

func TestDefaultCategoryTable(t *testing.T) {
	assert.Equal(t,
		[]string{"骨折", "血管瘤", "感染", "椎间盘问题", "恶性肿瘤", "其他类型疾病"},
		DefaultCategoryTable().Labels())
}
