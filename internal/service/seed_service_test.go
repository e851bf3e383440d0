package service

import (
	"testing"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedApplyIsRepeatable(t *testing.T) {
	db := newTestDB(t)
	seeder := NewSeedService(repository.NewUserRepository(db), repository.NewOrganizationRepository(db))
	f, err := ParseSeedFile([]byte(seedYAML))
	require.NoError(t, err)

	report, err := seeder.Apply(f)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Districts: 2, Schools: 2, Departments: 2, Users: 6}, report)

	report, err = seeder.Apply(f)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Skipped: 6}, report)

	jane, err := seeder.UserRepo.FindByUsername("jane")
	require.NoError(t, err)
	require.NotNil(t, jane.SchoolID)
	require.NotNil(t, jane.DistrictID)
	profile, err := seeder.UserRepo.FindStudentProfile(jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-1001", profile.StudentNumber)

	rivera, err := seeder.UserRepo.FindByUsername("ms_rivera")
	require.NoError(t, err)
	assert.Equal(t, model.Educator, rivera.Role)
	assert.NotNil(t, rivera.DepartmentID)
}

func TestSeedRejectsUnknownSchool(t *testing.T) {
	db := newTestDB(t)
	seeder := NewSeedService(repository.NewUserRepository(db), repository.NewOrganizationRepository(db))
	f, err := ParseSeedFile([]byte("users:\n  - username: x\n    email: x@example.org\n    password: secret123\n    school: Nowhere High\n"))
	require.NoError(t, err)

	_, err = seeder.Apply(f)
	assert.ErrorContains(t, err, "Nowhere High")

	_, err = ParseSeedFile([]byte("districts: [oops"))
	assert.Error(t, err)
}
