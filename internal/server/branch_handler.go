package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vrakshhq/vraksh/internal/branch"
	"github.com/vrakshhq/vraksh/pkg/jwt"
	"github.com/vrakshhq/vraksh/pkg/qrcode"
)

// BranchHandler exposes branch and item management plus the public page
// lookup.
type BranchHandler struct {
	branches  *branch.Service
	clientURL string
	logger    *slog.Logger
}

// NewBranchHandler creates the branch route handler.
func NewBranchHandler(branches *branch.Service, clientURL string, log *slog.Logger) *BranchHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BranchHandler{branches: branches, clientURL: clientURL, logger: log}
}

func (h *BranchHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())
	branches, err := h.branches.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if branches == nil {
		branches = []branch.Branch{}
	}
	respondData(w, http.StatusOK, branches)
}

func (h *BranchHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	b, err := h.branches.Create(r.Context(), userID, branch.CreateParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, b)
}

type branchUpdateRequest struct {
	Description        *string              `json:"description,omitempty"`
	SocialIcons        *[]branch.SocialIcon `json:"socialIcons,omitempty"`
	BackgroundColor    *string              `json:"backgroundColor,omitempty"`
	FontColor          *string              `json:"fontColor,omitempty"`
	FontFamily         *string              `json:"fontFamily,omitempty"`
	AvatarShape        *string              `json:"avatarShape,omitempty"`
	BackgroundImageURL *string              `json:"backgroundImageUrl,omitempty"`
	TemplateID         *string              `json:"templateId,omitempty"`
}

func (h *BranchHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())

	var req branchUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	b, err := h.branches.Update(r.Context(), userID, chi.URLParam(r, "branchId"), branch.BranchUpdate{
		Description:        req.Description,
		SocialIcons:        req.SocialIcons,
		BackgroundColor:    req.BackgroundColor,
		FontColor:          req.FontColor,
		FontFamily:         req.FontFamily,
		AvatarShape:        req.AvatarShape,
		BackgroundImageURL: req.BackgroundImageURL,
		TemplateID:         req.TemplateID,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, b)
}

func (h *BranchHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())
	if err := h.branches.Delete(r.Context(), userID, chi.URLParam(r, "branchId")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, map[string]string{"message": "branch deleted"})
}

// handleAddItem returns the branch's full item list so the client can
// render the new order without a second request.
func (h *BranchHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())
	branchID := chi.URLParam(r, "branchId")

	var req struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Style       string `json:"style,omitempty"`
		Description string `json:"description,omitempty"`
		ImageURL    string `json:"imageUrl,omitempty"`
		Publisher   string `json:"publisher,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if _, err := h.branches.AddItem(r.Context(), userID, branchID, branch.ItemParams{
		Title:       req.Title,
		URL:         req.URL,
		Style:       req.Style,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Publisher:   req.Publisher,
	}); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	items, err := h.branches.Items(r.Context(), userID, branchID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, items)
}

type itemUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Style       *string `json:"style,omitempty"`
	Active      *bool   `json:"active,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
}

func (h *BranchHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())

	var req itemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	item, err := h.branches.UpdateItem(r.Context(), userID, chi.URLParam(r, "itemId"), branch.ItemUpdate{
		Title:       req.Title,
		URL:         req.URL,
		Style:       req.Style,
		Active:      req.Active,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Publisher:   req.Publisher,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *BranchHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())
	err := h.branches.DeleteItem(r.Context(), userID,
		chi.URLParam(r, "branchId"), chi.URLParam(r, "itemId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

func (h *BranchHandler) handleReorder(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())

	var req struct {
		ItemIDs []string `json:"itemIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.branches.Reorder(r.Context(), userID, chi.URLParam(r, "branchId"), req.ItemIDs); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, map[string]string{"message": "order saved"})
}

// publicBranchView bundles the branch with its ordered items for the
// public renderer.
type publicBranchView struct {
	branch.Branch
	ItemList []branch.Item `json:"itemList"`
}

func (h *BranchHandler) handlePublicLookup(w http.ResponseWriter, r *http.Request) {
	b, items, err := h.branches.PublicBranch(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []branch.Item{}
	}
	respondData(w, http.StatusOK, publicBranchView{Branch: *b, ItemList: items})
}

// handleQRCode renders the branch's public URL as a QR code. The default is
// a raw PNG; ?format=json returns a base64 data URI for direct embedding.
func (h *BranchHandler) handleQRCode(w http.ResponseWriter, r *http.Request) {
	userID, _ := jwt.UserID(r.Context())

	b, err := h.branches.Get(r.Context(), userID, chi.URLParam(r, "branchId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	shareURL := fmt.Sprintf("%s/%s", h.clientURL, b.Name)
	if r.URL.Query().Get("format") == "json" {
		uri, err := qrcode.GenerateDataURI(shareURL, 256)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		respondData(w, http.StatusOK, map[string]string{"qrCode": uri})
		return
	}

	png, err := qrcode.Generate(shareURL, 256)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
