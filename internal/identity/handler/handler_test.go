package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	identityModel "dsarhub/internal/identity/models"
	"dsarhub/internal/identity/service"
	graphstore "dsarhub/internal/identity/store/graph"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/secrets"
)

const connectorKey = "test-connector-key"

// IdentityHandlerSuite exercises the routes through the full middleware chain,
// backed by a real in-memory service.
type IdentityHandlerSuite struct {
	suite.Suite
	router chi.Router
	store  *graphstore.InMemoryStore
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = graphstore.NewInMemoryStore()

	svc, err := service.New(s.store, service.WithLogger(logger))
	s.Require().NoError(err)

	hash, err := secrets.Hash(connectorKey)
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, logger, nil, map[string]string{"m365": hash}).Register(s.router)
}

func (s *IdentityHandlerSuite) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *IdentityHandlerSuite) resolveCase() domain.CaseID {
	caseID := domain.CaseID(uuid.New())
	w := s.do(http.MethodPost, "/cases/"+caseID.String()+"/identity/resolve", identityModel.SubjectRecord{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	return caseID
}

func (s *IdentityHandlerSuite) TestResolve() {
	s.Run("creates the graph", func() {
		caseID := s.resolveCase()

		var graph identityModel.IdentityGraph
		s.Require().NoError(json.Unmarshal(
			s.do(http.MethodGet, "/cases/"+caseID.String()+"/identity", nil, nil).Body.Bytes(), &graph))
		s.Equal("jane@example.com", graph.PrimaryEmail)
		s.Len(graph.Identifiers, 2)
	})

	s.Run("rejects an invalid case ID", func() {
		w := s.do(http.MethodPost, "/cases/not-a-uuid/identity/resolve", identityModel.SubjectRecord{
			FullName: "Jane Doe",
		}, nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects a subject without a name", func() {
		caseID := domain.CaseID(uuid.New())
		w := s.do(http.MethodPost, "/cases/"+caseID.String()+"/identity/resolve", identityModel.SubjectRecord{}, nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects non-JSON bodies", func() {
		caseID := domain.CaseID(uuid.New())
		req := httptest.NewRequest(http.MethodPost, "/cases/"+caseID.String()+"/identity/resolve",
			bytes.NewReader([]byte("full_name=Jane")))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnsupportedMediaType, w.Code)
	})
}

func (s *IdentityHandlerSuite) TestMerge() {
	auth := http.Header{"Authorization": []string{"Bearer m365:" + connectorKey}}

	s.Run("requires a connector credential", func() {
		caseID := s.resolveCase()
		w := s.do(http.MethodPost, "/cases/"+caseID.String()+"/identity/merge", identityModel.MergeRequest{}, nil)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("rejects a wrong key", func() {
		caseID := s.resolveCase()
		w := s.do(http.MethodPost, "/cases/"+caseID.String()+"/identity/merge", identityModel.MergeRequest{},
			http.Header{"Authorization": []string{"Bearer m365:wrong"}})
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("stamps the connector as the source", func() {
		caseID := s.resolveCase()
		w := s.do(http.MethodPost, "/cases/"+caseID.String()+"/identity/merge", identityModel.MergeRequest{
			Identifiers: []identityModel.IdentityEntry{
				{Type: domain.IdentifierUPN, Value: "jane.doe@corp.example.com", Confidence: 0.9},
			},
			ResolvedSystems: []identityModel.ResolvedSystem{
				{Provider: "m365", AccountID: "abc-123", DisplayName: "Jane Doe"},
			},
		}, auth)
		s.Require().Equal(http.StatusOK, w.Code)

		var graph identityModel.IdentityGraph
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &graph))
		s.Require().Len(graph.Identifiers, 3)
		s.Equal("m365", graph.Identifiers[2].Source)
		s.Len(graph.ResolvedSystems, 1)
	})

	s.Run("unknown case returns 404", func() {
		w := s.do(http.MethodPost, "/cases/"+uuid.NewString()+"/identity/merge", identityModel.MergeRequest{}, auth)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *IdentityHandlerSuite) TestQuerySpec() {
	s.Run("returns the prioritized identifiers", func() {
		caseID := s.resolveCase()

		w := s.do(http.MethodGet, "/cases/"+caseID.String()+"/identity/query-spec", nil, nil)
		s.Require().Equal(http.StatusOK, w.Code)

		var spec identityModel.SubjectIdentifiers
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &spec))
		s.Equal(domain.IdentifierEmail, spec.Primary.Type)
		s.Equal("jane@example.com", spec.Primary.Value)
	})

	s.Run("unknown case returns 404", func() {
		w := s.do(http.MethodGet, "/cases/"+uuid.NewString()+"/identity/query-spec", nil, nil)
		s.Equal(http.StatusNotFound, w.Code)
	})
}
