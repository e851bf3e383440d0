package service

import (
	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
)

// ResolveScope 计算调用者的数据边界。nil 表示内部可信调用
func ResolveScope(actor *model.User) repository.AccessScope {
	if actor == nil {
		return repository.AllAccess()
	}
	switch actor.Role {
	case model.Admin:
		switch {
		case actor.AdminLevel == model.AdminLevelDistrict && actor.DistrictID != nil:
			return repository.DistrictAccess(*actor.DistrictID)
		case actor.AdminLevel == model.AdminLevelSchool && actor.SchoolID != nil:
			return repository.SchoolAccess(*actor.SchoolID)
		case actor.AdminLevel == model.AdminLevelDepartment && actor.DepartmentID != nil:
			return repository.DepartmentAccess(*actor.DepartmentID)
		}
	case model.Educator:
		return repository.EducatorAccess(actor.ID)
	case model.Student:
		return repository.OwnAccess(actor.ID)
	}
	return repository.NoAccess()
}
