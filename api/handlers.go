package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskflow/board"
	"taskflow/domain"
)

const maxBodySize = 64 << 10

// Workspaces resolves the workspace of an authenticated user.
type Workspaces interface {
	Workspace(ctx context.Context, userID string) (*board.Workspace, error)
}

// timeNow is the clock used for the derived views.
var timeNow = time.Now

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, workspaces Workspaces, auth Authenticator, broker *Broker, logger *log.Logger) {
	e.GET("/healthz", healthz())

	g := e.Group("/api", RequestMetrics(logger), RequireUser(auth))
	g.GET("/tasks", listTasks(workspaces))
	g.POST("/tasks", createTask(workspaces))
	g.GET("/tasks/:id", getTask(workspaces))
	g.PUT("/tasks/:id", updateTask(workspaces))
	g.PATCH("/tasks/:id/status", changeStatus(workspaces))
	g.DELETE("/tasks/:id", deleteTask(workspaces))

	g.GET("/board", getBoard(workspaces))
	g.GET("/stats", getStats(workspaces))
	g.GET("/timeline", getTimeline(workspaces))

	g.GET("/notifications", listNotifications(workspaces))
	g.POST("/notifications/read", markAllRead(workspaces))
	g.POST("/notifications/:id/read", markRead(workspaces))
	g.DELETE("/notifications/:id", removeNotification(workspaces))

	g.GET("/preferences", getPreferences(workspaces))
	g.PUT("/preferences", putPreferences(workspaces))

	if broker != nil {
		g.GET("/stream", streamBoard(workspaces, broker))
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// workspace loads the caller's workspace, timing the lookup as the store
// stage. Storage failures become 503 so the client retries.
func workspace(c echo.Context, workspaces Workspaces) (*board.Workspace, error) {
	start := time.Now()
	ws, err := workspaces.Workspace(c.Request().Context(), userIDFrom(c))
	metrics := metricsFrom(c)
	metrics.Observe("store", time.Since(start))
	if err != nil {
		metrics.SetErrorStage("load_workspace")
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable").SetInternal(err)
	}
	return ws, nil
}

func requestBody(c echo.Context) io.Reader {
	return io.LimitReader(c.Request().Body, maxBodySize)
}

// decodeBody reads a bounded JSON body, rejecting unknown fields.
func decodeBody(c echo.Context, dst any) error {
	dec := sonic.ConfigStd.NewDecoder(requestBody(c))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respond(c echo.Context, status int, v any, items int) error {
	metrics := metricsFrom(c)
	if items >= 0 {
		metrics.SetItems(items)
	}
	start := time.Now()
	err := c.JSON(status, v)
	metrics.Observe("encode", time.Since(start))
	if err != nil {
		metrics.SetErrorStage("encode_response")
	}
	return err
}

func badRequest(c echo.Context, stage, msg string) error {
	metricsFrom(c).SetErrorStage(stage)
	return c.String(http.StatusBadRequest, msg)
}

func notFound(c echo.Context, msg string) error {
	metricsFrom(c).SetErrorStage("not_found")
	return c.String(http.StatusNotFound, msg)
}

func listTasks(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		var filter domain.Status
		if raw := c.QueryParam("status"); raw != "" {
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return badRequest(c, "invalid_status", "invalid status")
			}
			filter = status
		}
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		tasks := ws.Tasks.Tasks()
		if filter != "" {
			out := tasks[:0]
			for _, t := range tasks {
				if t.Status == filter {
					out = append(out, t)
				}
			}
			tasks = out
		}
		return respond(c, http.StatusOK, tasks, len(tasks))
	}
}

func createTask(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		draft, err := domain.DecodeDraft(requestBody(c))
		if err != nil {
			return badRequest(c, "decode", "invalid body")
		}
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		task, err := ws.Tasks.Create(c.Request().Context(), draft)
		if err != nil {
			return badRequest(c, "validate", err.Error())
		}
		return respond(c, http.StatusCreated, task, 1)
	}
}

func getTask(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		task, ok := ws.Tasks.Get(c.Param("id"))
		if !ok {
			return notFound(c, "task not found")
		}
		return respond(c, http.StatusOK, task, 1)
	}
}

func updateTask(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := domain.DecodeTask(requestBody(c))
		if err != nil {
			return badRequest(c, "decode", "invalid body")
		}
		id := c.Param("id")
		if task.ID != "" && task.ID != id {
			return badRequest(c, "validate", "task id does not match path")
		}
		task.ID = id

		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		ok, err := ws.Tasks.Update(c.Request().Context(), task)
		if err != nil {
			return badRequest(c, "validate", err.Error())
		}
		if !ok {
			return notFound(c, "task not found")
		}
		return respond(c, http.StatusOK, task, 1)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func changeStatus(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body statusRequest
		if err := decodeBody(c, &body); err != nil {
			return badRequest(c, "decode", "invalid body")
		}
		status, err := domain.ParseStatus(body.Status)
		if err != nil {
			return badRequest(c, "invalid_status", "invalid status")
		}

		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		id := c.Param("id")
		ok, err := ws.Tasks.ChangeStatus(c.Request().Context(), id, status)
		if err != nil {
			return badRequest(c, "invalid_status", err.Error())
		}
		if !ok {
			return notFound(c, "task not found")
		}
		task, _ := ws.Tasks.Get(id)
		return respond(c, http.StatusOK, task, 1)
	}
}

func deleteTask(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		if !ws.Tasks.Delete(c.Request().Context(), c.Param("id")) {
			return notFound(c, "task not found")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func getBoard(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		tasks := ws.Tasks.Tasks()
		return respond(c, http.StatusOK, domain.Partition(tasks), len(tasks))
	}
}

func getStats(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		tasks := ws.Tasks.Tasks()
		return respond(c, http.StatusOK, domain.Summarize(tasks, timeNow()), -1)
	}
}

func getTimeline(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		tasks := ws.Tasks.Tasks()
		timeline := domain.ProjectTimeline(tasks, timeNow(), nil)
		return respond(c, http.StatusOK, timeline, len(timeline.Rows))
	}
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func listNotifications(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		items := ws.Notifications.List()
		return respond(c, http.StatusOK, notificationsResponse{
			Notifications: items,
			Unread:        ws.Notifications.Unread(),
		}, len(items))
	}
}

type markAllReadResponse struct {
	Updated int `json:"updated"`
}

func markAllRead(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		n := ws.Notifications.MarkAllRead(c.Request().Context())
		return respond(c, http.StatusOK, markAllReadResponse{Updated: n}, -1)
	}
}

func markRead(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		if !ws.Notifications.MarkRead(c.Request().Context(), c.Param("id")) {
			return notFound(c, "notification not found")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func removeNotification(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		if !ws.Notifications.Remove(c.Request().Context(), c.Param("id")) {
			return notFound(c, "notification not found")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func getPreferences(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, ws.Preferences.Get(), -1)
	}
}

func putPreferences(workspaces Workspaces) echo.HandlerFunc {
	return func(c echo.Context) error {
		var prefs domain.Preferences
		if err := decodeBody(c, &prefs); err != nil {
			return badRequest(c, "decode", "invalid body")
		}
		ws, err := workspace(c, workspaces)
		if err != nil {
			return err
		}
		if err := ws.Preferences.Set(c.Request().Context(), prefs); err != nil {
			return badRequest(c, "validate", err.Error())
		}
		return respond(c, http.StatusOK, ws.Preferences.Get(), -1)
	}
}
