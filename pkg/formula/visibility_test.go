package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldShow(t *testing.T) {
	tests := []struct {
		name   string
		tags   []Tag
		active []string
		want   bool
	}{
		{
			name:   "no tags always shows",
			tags:   nil,
			active: []string{"chanukah"},
			want:   true,
		},
		{
			name:   "shita tags are informational",
			tags:   []Tag{{Key: "gra", Type: TagShita}},
			active: nil,
			want:   true,
		},
		{
			name:   "timing tags alone do not restrict",
			tags:   []Tag{{Key: "motzei", Type: TagTiming}},
			active: nil,
			want:   true,
		},
		{
			name:   "positive tag matches active event",
			tags:   []Tag{{Key: "shabbos", Type: TagEvent}},
			active: []string{"shabbos"},
			want:   true,
		},
		{
			name:   "positive tag with different event hides",
			tags:   []Tag{{Key: "shabbos", Type: TagEvent}},
			active: []string{"chanukah"},
			want:   false,
		},
		{
			name:   "positive tag with no events hides",
			tags:   []Tag{{Key: "shabbos", Type: TagEvent}},
			active: nil,
			want:   false,
		},
		{
			name:   "jewish_day tag matches like an event",
			tags:   []Tag{{Key: "yom_tov", Type: TagJewishDay}},
			active: []string{"yom_tov"},
			want:   true,
		},
		{
			name: "negated tag overrides a positive match",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "sukkos", Type: TagEvent, Negated: true},
			},
			active: []string{"shabbos", "sukkos"},
			want:   false,
		},
		{
			name: "negated tag inactive leaves positive match",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "sukkos", Type: TagEvent, Negated: true},
			},
			active: []string{"shabbos"},
			want:   true,
		},
		{
			name:   "only negated tags show when inactive",
			tags:   []Tag{{Key: "sukkos", Type: TagEvent, Negated: true}},
			active: []string{"shabbos"},
			want:   true,
		},
		{
			name: "day_before shows on the eve",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "day_before", Type: TagTiming},
			},
			active: []string{"erev_shabbos"},
			want:   true,
		},
		{
			name: "day_before hides on the day itself",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "day_before", Type: TagTiming},
			},
			active: []string{"shabbos"},
			want:   false,
		},
		{
			name: "day_before wins over motzei",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "day_before", Type: TagTiming},
				{Key: "motzei", Type: TagTiming},
			},
			active: []string{"erev_shabbos"},
			want:   true,
		},
		{
			name: "day_before rewrites negated targets too",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "yom_tov", Type: TagEvent, Negated: true},
				{Key: "day_before", Type: TagTiming},
			},
			active: []string{"erev_shabbos", "erev_yom_tov"},
			want:   false,
		},
		{
			name: "negated bare key does not match once rewritten",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "yom_tov", Type: TagEvent, Negated: true},
				{Key: "day_before", Type: TagTiming},
			},
			active: []string{"erev_shabbos", "yom_tov"},
			want:   true,
		},
		{
			name: "motzei matches the end-of-event code",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "motzei", Type: TagTiming},
			},
			active: []string{"shabbos"},
			want:   true,
		},
		{
			name: "multiple positive tags need one match",
			tags: []Tag{
				{Key: "shabbos", Type: TagEvent},
				{Key: "yom_tov", Type: TagEvent},
			},
			active: []string{"yom_tov"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldShow(tt.tags, tt.active))
		})
	}
}
