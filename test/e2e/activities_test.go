//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/core/domain"
	"github.com/ammerola/api-framework/internal/core/endpoints"
	"github.com/ammerola/api-framework/internal/dataset"
	"github.com/ammerola/api-framework/internal/pkg/config"
	"github.com/ammerola/api-framework/internal/pkg/logger"
	"github.com/ammerola/api-framework/test/helpers"
)

type ActivitiesE2ESuite struct {
	suite.Suite
	client *apiclient.Client
	ctx    context.Context
}

func (s *ActivitiesE2ESuite) SetupSuite() {
	cfg, err := config.Load(helpers.TestLogger())
	s.Require().NoError(err)

	s.client, err = apiclient.New(cfg.API.BaseURL, helpers.APIClientOptions(s.T(), cfg)...)
	s.Require().NoError(err)
}

func (s *ActivitiesE2ESuite) SetupTest() {
	s.ctx = logger.WithTestName(context.Background(), s.T().Name())
}

func (s *ActivitiesE2ESuite) TestGetActivities() {
	resp, err := s.client.Get(s.ctx, endpoints.Activities, nil, nil)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var activities []domain.Activity
	s.Require().NoError(resp.JSON(&activities))
	s.Len(activities, 30)
}

func (s *ActivitiesE2ESuite) TestGetActivityByID() {
	resp, err := s.client.Get(s.ctx, endpoints.ActivityByID, nil, apiclient.PathParams{"id": "1"})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.URL, "/api/v1/Activities/1")

	var activity domain.Activity
	s.Require().NoError(resp.JSON(&activity))
	s.Equal(1, activity.ID)
	s.NotEmpty(activity.Title)
}

func (s *ActivitiesE2ESuite) TestGetUnknownActivity() {
	resp, err := s.client.Get(s.ctx, endpoints.ActivityByID, nil, apiclient.PathParams{"id": "999999"})
	s.Require().NoError(err)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ActivitiesE2ESuite) TestCreateActivities() {
	activities, err := dataset.Activities()
	s.Require().NoError(err)

	for _, activity := range activities {
		s.Run(activity.Title, func() {
			resp, err := s.client.Post(s.ctx, endpoints.Activities, activity)
			s.Require().NoError(err)
			s.Contains([]int{http.StatusOK, http.StatusCreated}, resp.StatusCode)

			var echoed domain.Activity
			s.Require().NoError(resp.JSON(&echoed))
			s.Equal(activity.Title, echoed.Title)
			s.Equal(activity.Completed, echoed.Completed)
			s.True(activity.DueDate.Equal(echoed.DueDate),
				"dueDate %s echoed as %s", activity.DueDate.Format(time.RFC3339), echoed.DueDate.Format(time.RFC3339))
		})
	}
}

func (s *ActivitiesE2ESuite) TestUpdateActivity() {
	update := domain.Activity{ID: 1, Title: "Jump", DueDate: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), Completed: true}

	resp, err := s.client.Put(s.ctx, endpoints.ActivityByID, update, apiclient.PathParams{"id": "1"})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var echoed domain.Activity
	s.Require().NoError(resp.JSON(&echoed))
	s.True(update.Matches(echoed))
}

func (s *ActivitiesE2ESuite) TestDeleteActivity() {
	resp, err := s.client.Delete(s.ctx, endpoints.ActivityByID, apiclient.PathParams{"id": "1"})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestActivitiesE2ESuite(t *testing.T) {
	suite.Run(t, new(ActivitiesE2ESuite))
}
