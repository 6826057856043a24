package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insignia/internal/badge/models"
	"insignia/internal/badge/service"
	"insignia/internal/badge/store"
	"insignia/pkg/requestcontext"
)

const (
	enrolledRef     = "ipfs://enrolled"
	certifiedFolder = "ipfs://certified"
)

func newTestRouter(t *testing.T) (*chi.Mux, *service.Service) {
	t.Helper()

	svc := service.New(store.NewInMemory(), service.Config{
		EnrolledRef:        enrolledRef,
		CertifiedFolderRef: certifiedFolder,
	})
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	h.RegisterOwner(r)
	h.RegisterAuthenticated(r)
	h.RegisterPublic(r)
	return r, svc
}

// doJSON performs a request with an optional JSON body and caller identity.
func doJSON(t *testing.T, router http.Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req = req.WithContext(requestcontext.WithIdentity(req.Context(), caller))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func onboardTeacher(t *testing.T, router http.Handler, identity string) uint64 {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/admin/faculty", "", &OnboardFacultyRequest{
		Identities:  []string{identity},
		ContentRefs: []string{"ipfs://faculty/" + identity},
		Roles:       []string{"teacher"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp IssueBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Badges, 1)
	return resp.Badges[0].BadgeID
}

func enrollStudent(t *testing.T, router http.Handler, caller, identity string) uint64 {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/badges/enroll", caller, &EnrollStudentsRequest{
		Identities: []string{identity},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp IssueBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Badges, 1)
	return resp.Badges[0].BadgeID
}

func TestHandleOnboardFaculty(t *testing.T) {
	t.Run("issues certified faculty badges", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/admin/faculty", "", &OnboardFacultyRequest{
			Identities:  []string{"0xt1", "0xta1"},
			ContentRefs: []string{"ipfs://t1", "ipfs://ta1"},
			Roles:       []string{"teacher", "teaching_assistant"},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp IssueBatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Badges, 2)
		assert.Equal(t, uint64(1), resp.Badges[0].BadgeID)
		assert.Equal(t, uint64(2), resp.Badges[1].BadgeID)
		assert.True(t, resp.Badges[0].Certified)
		assert.Equal(t, "ipfs://t1", resp.Badges[0].ContentRef)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/admin/faculty", "", &OnboardFacultyRequest{
			Identities:  []string{"0xt1"},
			ContentRefs: []string{"ipfs://t1"},
			Roles:       []string{"janitor"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_role")
	})

	t.Run("rejects student role in faculty batch", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/admin/faculty", "", &OnboardFacultyRequest{
			Identities:  []string{"0xs1"},
			ContentRefs: []string{""},
			Roles:       []string{"student"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_role")
	})

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/admin/faculty", "", &OnboardFacultyRequest{
			Identities:  []string{"0xt1", "0xt2"},
			ContentRefs: []string{"ipfs://t1"},
			Roles:       []string{"teacher", "teacher"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "length_mismatch")
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/admin/faculty", "", &OnboardFacultyRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleEnrollStudents(t *testing.T) {
	t.Run("faculty enrolls students", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")

		w := doJSON(t, router, http.MethodPost, "/badges/enroll", "0xteacher", &EnrollStudentsRequest{
			Identities: []string{"0xs1", "0xs2"},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp IssueBatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Badges, 2)
		assert.Equal(t, "student", resp.Badges[0].Role)
		assert.False(t, resp.Badges[0].Certified)
	})

	t.Run("unregistered caller is rejected", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/badges/enroll", "0xstranger", &EnrollStudentsRequest{
			Identities: []string{"0xs1"},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not_registered")
	})

	t.Run("student caller lacks role", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodPost, "/badges/enroll", "0xs1", &EnrollStudentsRequest{
			Identities: []string{"0xs2"},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient_role")
	})
}

func TestHandleCertifyStudent(t *testing.T) {
	t.Run("certifies a student once", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		studentID := enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodPost, "/badges/2/certify", "0xteacher", &CertifyRequest{Grade: "A"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, studentID, resp.BadgeID)
		assert.True(t, resp.Certified)
		assert.Equal(t, uint64(1), resp.SequenceNumber)
		assert.Equal(t, "A", resp.Grade)
		require.NotNil(t, resp.CertifiedAt)
	})

	t.Run("second certification conflicts", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodPost, "/badges/2/certify", "0xteacher", &CertifyRequest{Grade: "A"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/badges/2/certify", "0xteacher", &CertifyRequest{Grade: "B"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "already_certified")
	})

	t.Run("missing badge is not a student", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")

		w := doJSON(t, router, http.MethodPost, "/badges/99/certify", "0xteacher", &CertifyRequest{Grade: "A"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "not_a_student")
	})

	t.Run("rejects malformed badge id", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")

		w := doJSON(t, router, http.MethodPost, "/badges/abc/certify", "0xteacher", &CertifyRequest{Grade: "A"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleTerminate(t *testing.T) {
	t.Run("holder burns own badge", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodDelete, "/badges/2", "0xs1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, router, http.MethodGet, "/badges/2", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-holder cannot burn", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodDelete, "/badges/2", "0xother", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not_owner")
	})

	t.Run("faculty revokes any badge", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodPost, "/badges/2/revoke", "0xteacher", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("student cannot revoke", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodPost, "/badges/1/revoke", "0xs1", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandleTransfer(t *testing.T) {
	t.Run("existing badge transfer is rejected", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")

		w := doJSON(t, router, http.MethodPost, "/badges/1/transfer", "0xteacher", &TransferRequest{To: "0xother"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "transfer_rejected")
	})

	t.Run("missing badge transfer is not found", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/badges/7/transfer", "0xteacher", &TransferRequest{To: "0xother"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing destination fails validation", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")

		w := doJSON(t, router, http.MethodPost, "/badges/1/transfer", "0xteacher", &TransferRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleMetadata(t *testing.T) {
	t.Run("resolves lifecycle states", func(t *testing.T) {
		router, _ := newTestRouter(t)
		onboardTeacher(t, router, "0xteacher")
		enrollStudent(t, router, "0xteacher", "0xs1")

		w := doJSON(t, router, http.MethodGet, "/badges/1/metadata", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp MetadataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ipfs://faculty/0xteacher", resp.ContentRef)

		w = doJSON(t, router, http.MethodGet, "/badges/2/metadata", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, enrolledRef, resp.ContentRef)

		doJSON(t, router, http.MethodPost, "/badges/2/certify", "0xteacher", &CertifyRequest{Grade: "A"})

		w = doJSON(t, router, http.MethodGet, "/badges/2/metadata", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, certifiedFolder+"/1.json", resp.ContentRef)
	})

	t.Run("missing badge is not found", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doJSON(t, router, http.MethodGet, "/badges/5/metadata", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})
}

func TestHandleSetCertifiedFolder(t *testing.T) {
	router, svc := newTestRouter(t)
	onboardTeacher(t, router, "0xteacher")
	enrollStudent(t, router, "0xteacher", "0xs1")
	doJSON(t, router, http.MethodPost, "/badges/2/certify", "0xteacher", &CertifyRequest{Grade: "A"})

	w := doJSON(t, router, http.MethodPut, "/admin/certified-folder", "", &SetCertifiedFolderRequest{Ref: "ipfs://archive"})
	require.Equal(t, http.StatusOK, w.Code)

	ref, err := svc.ResolveMetadata(context.Background(), models.BadgeID(2))
	require.NoError(t, err)
	assert.Equal(t, "ipfs://archive/1.json", ref)

	t.Run("rejects empty ref", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/admin/certified-folder", "", &SetCertifiedFolderRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleLockedAndCapabilities(t *testing.T) {
	router, _ := newTestRouter(t)
	onboardTeacher(t, router, "0xteacher")

	t.Run("existing badge is locked", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/badges/1/locked", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp LockedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Locked)
	})

	t.Run("missing badge locked probe is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/badges/9/locked", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reports supported capabilities", func(t *testing.T) {
		for _, capability := range []string{"ownership_registry", "locked_token"} {
			w := doJSON(t, router, http.MethodGet, "/capabilities/"+capability, "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp CapabilityResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Supported, capability)
		}
	})

	t.Run("unknown capability is unsupported", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/capabilities/delegation", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp CapabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Supported)
	})
}
