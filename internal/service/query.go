package service

import (
	"fmt"
	"sort"
	"strings"

	"hostel-portal/internal/domain"
)

// SortOrder selects how application lists are ordered.
type SortOrder string

const (
	SortDistanceDesc SortOrder = "distance_desc"
	SortDistanceAsc  SortOrder = "distance_asc"
	SortRank         SortOrder = "rank"
)

// ParseSortOrder accepts the API names plus the portal's "high-low" and
// "low-high" labels. Empty means distance_desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortDistanceDesc), "high-low":
		return SortDistanceDesc, nil
	case string(SortDistanceAsc), "low-high":
		return SortDistanceAsc, nil
	case string(SortRank):
		return SortRank, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q (use distance_desc, distance_asc or rank)", domain.ErrInvalid, s)
}

// ApplicationQuery is the admin list view's filter and sort.
type ApplicationQuery struct {
	Sort     SortOrder
	Branch   string // case-insensitive substring
	Gender   string // exact
	Status   domain.ApplicationStatus
	Unhoused bool
}

// FilterApplications keeps the entries matching every non-empty criterion.
// Input order is preserved.
func FilterApplications(list []*domain.Application, q ApplicationQuery) []*domain.Application {
	branch := strings.ToLower(strings.TrimSpace(q.Branch))
	out := make([]*domain.Application, 0, len(list))
	for _, a := range list {
		if branch != "" && !strings.Contains(strings.ToLower(a.Branch), branch) {
			continue
		}
		if q.Gender != "" && a.Gender != q.Gender {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.Unhoused && a.Housed() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortApplications orders list in place. The sort is stable: equal keys keep
// their input order, so re-applying the same order changes nothing.
func SortApplications(list []*domain.Application, order SortOrder) {
	var less func(i, j int) bool
	switch order {
	case SortDistanceAsc:
		less = func(i, j int) bool { return list[i].Distance < list[j].Distance }
	case SortRank:
		less = func(i, j int) bool { return list[i].Rank < list[j].Rank }
	default:
		less = func(i, j int) bool { return list[i].Distance > list[j].Distance }
	}
	sort.SliceStable(list, less)
}
