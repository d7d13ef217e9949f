package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assistant/pkg/conversation"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("empty message"))
		return
	}

	result, err := s.agent.ProcessMessage(r.Context(), message)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("empty message"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorResponse(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for event := range s.agent.ProcessMessageStream(r.Context(), message) {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("encoding stream event: %v", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

type executeActionRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

func (s *Server) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	var req executeActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("missing tool name"))
		return
	}

	result, err := s.agent.ConfirmAction(r.Context(), req.Name, req.Args)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

type previewReplaceRequest struct {
	Filename string `json:"filename"`
	OldCode  string `json:"old_code"`
	NewCode  string `json:"new_code"`
}

func (s *Server) handlePreviewReplace(w http.ResponseWriter, r *http.Request) {
	var req previewReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	if req.Filename == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("filename is required"))
		return
	}

	preview, err := s.agent.PreviewReplace(r.Context(), req.Filename, req.OldCode, req.NewCode)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.errorResponse(w, http.StatusNotFound, fmt.Errorf("file %q not found", req.Filename))
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"ok":           true,
		"snippet_diff": preview.SnippetDiff,
		"file_diff":    preview.FileDiff,
	})
}

type previewWriteRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *Server) handlePreviewWrite(w http.ResponseWriter, r *http.Request) {
	var req previewWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	if req.Filename == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("filename is required"))
		return
	}

	fileDiff, err := s.agent.PreviewWrite(r.Context(), req.Filename, req.Content)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"ok":        true,
		"file_diff": fileDiff,
	})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("path")
	if root == "" {
		root = "."
	}
	root = s.workspace.Resolve(r.Context(), root)

	var lines []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(os.PathSeparator)) + 1
		}
		indent := strings.Repeat("  ", depth)
		if d.IsDir() {
			lines = append(lines, indent+d.Name()+"/")
		} else {
			lines = append(lines, indent+d.Name())
		}
		return nil
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"tree": strings.Join(lines, "\n")})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("path parameter required"))
		return
	}

	data, err := os.ReadFile(s.workspace.Resolve(r.Context(), path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.errorResponse(w, http.StatusNotFound, errors.New("file not found"))
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"content": string(data)})
}

func (s *Server) handleListChats(w http.ResponseWriter, _ *http.Request) {
	files, err := s.archive.List()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"files": files})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("file")
	content, err := s.archive.Load(filename)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"filename": filepath.Base(filename),
		"content":  content,
	})
}

type saveChatRequest struct {
	Markdown string `json:"markdown"`
}

func (s *Server) handleSaveChat(w http.ResponseWriter, r *http.Request) {
	var req saveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	markdown := req.Markdown
	if strings.TrimSpace(markdown) == "" {
		// no client-side transcript: render the server's own history
		markdown = s.agent.Conversation().Markdown()
	}

	filename, err := s.archive.Save(markdown)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyTranscript) {
			s.errorResponse(w, http.StatusBadRequest, err)
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "filename": filename})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.agent.Conversation().Reset()
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}
