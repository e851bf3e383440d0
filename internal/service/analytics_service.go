package service

import (
	"math"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"
)

type AnalyticsService struct {
	Repo     *repository.AnalyticsRepository
	UserRepo *repository.UserRepository
}

func NewAnalyticsService(repo *repository.AnalyticsRepository, userRepo *repository.UserRepository) *AnalyticsService {
	return &AnalyticsService{Repo: repo, UserRepo: userRepo}
}

type EducatorPerformance struct {
	EducatorID     uint    `json:"educatorId"`
	Name           string  `json:"name"`
	Classes        int64   `json:"classes"`
	Students       int64   `json:"students"`
	AverageGrade   float64 `json:"averageGrade"`
	GradedCount    int64   `json:"gradedCount"`
	AttendanceRate float64 `json:"attendanceRate"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// EducatorPerformance 学生无权查看
func (s *AnalyticsService) EducatorPerformance(actor *model.User) ([]EducatorPerformance, error) {
	if actor.Role == model.Student {
		return nil, util.ErrPermissionDenied
	}
	stats, err := s.Repo.EducatorPerformance(ResolveScope(actor))
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(stats))
	for _, st := range stats {
		ids = append(ids, st.EducatorID)
	}
	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		names[u.ID] = name
	}

	result := make([]EducatorPerformance, 0, len(stats))
	for _, st := range stats {
		result = append(result, EducatorPerformance{
			EducatorID:     st.EducatorID,
			Name:           names[st.EducatorID],
			Classes:        st.Classes,
			Students:       st.Students,
			AverageGrade:   round1(st.AverageGrade),
			GradedCount:    st.GradedCount,
			AttendanceRate: round1(st.AttendanceRate),
		})
	}
	return result, nil
}
