//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ammerola/api-framework/internal/core/domain"
	"github.com/ammerola/api-framework/internal/dataset"
	"github.com/ammerola/api-framework/test/helpers"
)

type PeopleDatasetE2ESuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   *dataset.PeopleRepository
	ctx    context.Context
}

func (s *PeopleDatasetE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = dataset.NewPeopleRepository(s.testDB.Database, helpers.TestLogger())

	_, err := dataset.Seed(s.ctx, s.testDB.Database, helpers.TestLogger())
	s.Require().NoError(err)
}

func (s *PeopleDatasetE2ESuite) TestPersonOne() {
	people, err := s.testDB.Database.QueryDict(s.ctx, "SELECT * FROM people WHERE id = $1", 1)
	s.Require().NoError(err)
	s.Require().NotEmpty(people)

	person := people[0]
	s.Equal("Alice", person["fname"])
	s.EqualValues(30, person["age"])
}

func (s *PeopleDatasetE2ESuite) TestRepositoryMatchesFixture() {
	fixture, err := dataset.People()
	s.Require().NoError(err)

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(len(fixture)), count)

	for _, want := range fixture {
		got, err := s.repo.FindByID(s.ctx, want.ID)
		s.Require().NoError(err)
		s.Equal(want.FName, got.FName)
		s.Equal(want.Age, got.Age)
		s.Equal(want.Email, got.Email)
	}
}

func (s *PeopleDatasetE2ESuite) TestInsertAfterSeedGetsFreshID() {
	fixture, err := dataset.People()
	s.Require().NoError(err)

	var maxID int64
	for _, p := range fixture {
		maxID = max(maxID, p.ID)
	}

	people, err := s.repo.FindByFirstName(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Require().Len(people, 1)

	id, err := s.repo.Create(s.ctx, &domain.Person{FName: "Zoe", Age: 22})
	s.Require().NoError(err)
	s.Greater(id, maxID)

	_, err = s.testDB.Database.Execute(s.ctx, "DELETE FROM people WHERE id = $1", id)
	s.Require().NoError(err)
}

func TestPeopleDatasetE2ESuite(t *testing.T) {
	suite.Run(t, new(PeopleDatasetE2ESuite))
}

func (s *PeopleDatasetE2ESuite) TestFailedSeedKeepsExistingRows() {
	before, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Require().NotZero(before)

	_, err = dataset.SeedPeople(s.ctx, s.testDB.Database, []domain.Person{
		{ID: 100, FName: "Erin", Age: 28},
		{ID: 100, FName: "Frank", Age: 52},
	}, helpers.TestLogger())
	s.Require().Error(err)

	after, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)

	people, err := s.repo.FindByFirstName(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Len(people, 1)
}
