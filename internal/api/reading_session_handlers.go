package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/service"
)

func (s *Server) registerReadingSessionRoutes() {
	register(s, huma.Operation{
		OperationID:   "createReadingSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{bookId}/sessions",
		Summary:       "Log reading session",
		Description:   "Records a reading session and adds its pages to the book",
		Tags:          []string{"Reading Sessions"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReadingSession)

	register(s, huma.Operation{
		OperationID: "listReadingSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}/sessions",
		Summary:     "List reading sessions",
		Description: "Returns a page of the book's sessions, newest session date first",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListReadingSessions)

	register(s, huma.Operation{
		OperationID: "getReadingSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}/sessions/{sessionId}",
		Summary:     "Get reading session",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReadingSession)

	register(s, huma.Operation{
		OperationID: "updateReadingSession",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{bookId}/sessions/{sessionId}",
		Summary:     "Update reading session",
		Description: "Replaces a session's values and moves the book's pages read by the difference",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReadingSession)

	register(s, huma.Operation{
		OperationID:   "deleteReadingSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{bookId}/sessions/{sessionId}",
		Summary:       "Delete reading session",
		Description:   "Deletes a session and takes its pages back from the book",
		Tags:          []string{"Reading Sessions"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReadingSession)
}

// === DTOs ===

// ReadingSessionRequest is the request body for creating or replacing a session.
type ReadingSessionRequest struct {
	Minutes     int       `json:"minutes" doc:"Minutes spent reading, greater than zero"`
	PagesRead   int       `json:"pages_read" doc:"Pages read in this session, greater than zero"`
	SessionDate *FlexTime `json:"session_date,omitempty" doc:"When the session happened; defaults to now"`
}

// CreateReadingSessionInput wraps the create session request for Huma.
type CreateReadingSessionInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Body   ReadingSessionRequest
}

// UpdateReadingSessionInput wraps the update session request for Huma.
type UpdateReadingSessionInput struct {
	BookID    string `path:"bookId" doc:"Book ID"`
	SessionID string `path:"sessionId" doc:"Reading session ID"`
	Body      ReadingSessionRequest
}

// ReadingSessionIDInput identifies a session by path parameters.
type ReadingSessionIDInput struct {
	BookID    string `path:"bookId" doc:"Book ID"`
	SessionID string `path:"sessionId" doc:"Reading session ID"`
}

// ListReadingSessionsInput holds the session listing parameters.
type ListReadingSessionsInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	PageQuery
}

// ReadingSessionResponse contains session data in API responses.
type ReadingSessionResponse struct {
	ID          string    `json:"id" doc:"Reading session ID"`
	BookID      string    `json:"book_id" doc:"Book ID"`
	Minutes     int       `json:"minutes" doc:"Minutes spent reading"`
	PagesRead   int       `json:"pages_read" doc:"Pages read in this session"`
	SessionDate time.Time `json:"session_date" doc:"When the session happened"`
	CreatedAt   time.Time `json:"created_at" doc:"When the session was logged"`
}

// BookProgressResponse is the book state left by a session change.
type BookProgressResponse struct {
	PagesRead int  `json:"pages_read" doc:"Book pages read after the change"`
	Progress  int  `json:"progress" doc:"Percentage read, 0 to 100"`
	Finished  bool `json:"finished" doc:"Whether every page has been read"`
}

// ReadingSessionResultResponse is a session together with the book totals it produced.
type ReadingSessionResultResponse struct {
	ReadingSessionResponse
	Book BookProgressResponse `json:"book" doc:"Book totals after the change"`
}

// ReadingSessionResultOutput wraps a session result for Huma.
type ReadingSessionResultOutput struct {
	Body ReadingSessionResultResponse
}

// ReadingSessionOutput wraps a single session for Huma.
type ReadingSessionOutput struct {
	Body ReadingSessionResponse
}

// ListReadingSessionsResponse contains a page of sessions.
type ListReadingSessionsResponse struct {
	Sessions []ReadingSessionResponse `json:"sessions" doc:"Sessions on this page"`
	PageInfo
}

// ListReadingSessionsOutput wraps the session list for Huma.
type ListReadingSessionsOutput struct {
	Body ListReadingSessionsResponse
}

// === Handlers ===

func (s *Server) handleCreateReadingSession(ctx context.Context, input *CreateReadingSessionInput) (*ReadingSessionResultOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.ReadingSession.CreateSession(ctx, service.CreateSessionRequest{
		BookID:      input.BookID,
		UserID:      userID,
		Minutes:     input.Body.Minutes,
		PagesRead:   input.Body.PagesRead,
		SessionDate: optionalTime(input.Body.SessionDate),
	})
	if err != nil {
		return nil, err
	}
	return &ReadingSessionResultOutput{Body: mapSessionResult(result)}, nil
}

func (s *Server) handleListReadingSessions(ctx context.Context, input *ListReadingSessionsInput) (*ListReadingSessionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.ReadingSession.ListSessions(ctx, input.BookID, userID, input.params())
	if err != nil {
		return nil, err
	}
	return &ListReadingSessionsOutput{
		Body: ListReadingSessionsResponse{
			Sessions: mapItems(page.Items, mapReadingSessionResponse),
			PageInfo: pageInfo(page),
		},
	}, nil
}

func (s *Server) handleGetReadingSession(ctx context.Context, input *ReadingSessionIDInput) (*ReadingSessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.services.ReadingSession.GetSession(ctx, input.BookID, userID, input.SessionID)
	if err != nil {
		return nil, err
	}
	return &ReadingSessionOutput{Body: mapReadingSessionResponse(session)}, nil
}

func (s *Server) handleUpdateReadingSession(ctx context.Context, input *UpdateReadingSessionInput) (*ReadingSessionResultOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.ReadingSession.UpdateSession(ctx, service.UpdateSessionRequest{
		BookID:      input.BookID,
		UserID:      userID,
		SessionID:   input.SessionID,
		Minutes:     input.Body.Minutes,
		PagesRead:   input.Body.PagesRead,
		SessionDate: optionalTime(input.Body.SessionDate),
	})
	if err != nil {
		return nil, err
	}
	return &ReadingSessionResultOutput{Body: mapSessionResult(result)}, nil
}

func (s *Server) handleDeleteReadingSession(ctx context.Context, input *ReadingSessionIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.ReadingSession.DeleteSession(ctx, input.BookID, userID, input.SessionID); err != nil {
		return nil, err
	}
	return nil, nil
}

func mapReadingSessionResponse(rs *domain.ReadingSession) ReadingSessionResponse {
	return ReadingSessionResponse{
		ID:          rs.ID,
		BookID:      rs.BookID,
		Minutes:     rs.Minutes,
		PagesRead:   rs.PagesRead,
		SessionDate: rs.SessionDate,
		CreatedAt:   rs.CreatedAt,
	}
}

func mapSessionResult(r *service.SessionResult) ReadingSessionResultResponse {
	return ReadingSessionResultResponse{
		ReadingSessionResponse: ReadingSessionResponse{
			ID:          r.ID,
			BookID:      r.BookID,
			Minutes:     r.Minutes,
			PagesRead:   r.PagesRead,
			SessionDate: r.SessionDate,
			CreatedAt:   r.CreatedAt,
		},
		Book: BookProgressResponse{
			PagesRead: r.BookPagesRead,
			Progress:  r.Progress,
			Finished:  r.Finished,
		},
	}
}
