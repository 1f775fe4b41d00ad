package usecase

import (
	"testing"

	"BacklogStatus/internal/domain"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		days float64
		want domain.StatusDescriptor
	}{
		{
			name: "boundary is busy",
			days: 3.0,
			want: domain.StatusDescriptor{Message: "Estimated inbox backlog: about 3 days", Icon: domain.IconInboxTray, Busy: true},
		},
		{
			name: "just below boundary",
			days: 2.999,
			want: domain.StatusDescriptor{Message: "Estimated inbox backlog: a few days", Icon: domain.IconKiwiFruit, Busy: false},
		},
		{
			name: "floors displayed days",
			days: 7.99,
			want: domain.StatusDescriptor{Message: "Estimated inbox backlog: about 7 days", Icon: domain.IconInboxTray, Busy: true},
		},
		{
			name: "empty inbox",
			days: 0,
			want: domain.StatusDescriptor{Message: "Estimated inbox backlog: a few days", Icon: domain.IconKiwiFruit, Busy: false},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := StatusPolicy{}.Describe(domain.BacklogEstimate{Days: tc.days})
			if got != tc.want {
				t.Fatalf("Describe(%v) = %+v, want %+v", tc.days, got, tc.want)
			}
		})
	}
}
