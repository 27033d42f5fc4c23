// Package arquivos guarda os anexos das entidades no GridFS
package arquivos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/service/crud"
	"sindicatorest/internal/utils"

	"github.com/gin-gonic/gin"
)

// MaxSize é o tamanho máximo de um anexo
const MaxSize = 10 << 20

// Register monta as rotas de anexos. O primeiro segmento é a entidade nas
// rotas com dois parâmetros e o id do arquivo nas demais.
func Register(g *gin.RouterGroup, cfg *config.App) {
	a := g.Group("/arquivos")
	a.POST("/:ref/:entityId", Upload(cfg))
	a.GET("/:ref/:entityId", List(cfg))
	a.GET("/:ref", Download(cfg))
	a.DELETE("/:ref", Delete(cfg))
}

func fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, mongo.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(c, http.StatusServiceUnavailable, err.Error(), message, nil))
	case errors.Is(err, mongo.ErrFileNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(c, http.StatusNotFound, err.Error(), message, nil))
	default:
		crud.Fail(c, err, message)
	}
}

// entity valida a entidade da rota e retorna a tabela dela
func entity(c *gin.Context) (string, string, bool) {
	name := c.Param("ref")
	table, ok := utils.ArquivoEntities[name]
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "Invalid parameter",
			fmt.Sprintf("entity %q does not accept attachments", name)))
		return "", "", false
	}
	return name, table, true
}

// Upload anexa um arquivo a um registro
// @Summary      Enviar anexo
// @Description  Anexa um arquivo (JPEG, PNG ou PDF, até 10 MB) a um registro de sócios, empresas, funcionarios, ativos, contas-pagar ou contas-receber
// @Tags         arquivos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        entity    path     string true "Entidade" Enums(socios, empresas, funcionarios, ativos, contas-pagar, contas-receber)
// @Param        entityId  path     string true "ID do registro"
// @Param        file      formData file   true "Arquivo"
// @Success      201 {object} dto.SuccessResponse{data=mongo.FileInfo}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      404 {object} dto.ErrorResponse "Registro não encontrado"
// @Failure      413 {object} dto.ErrorResponse "Arquivo maior que 10 MB"
// @Failure      415 {object} dto.ErrorResponse "Tipo de arquivo não aceito"
// @Failure      503 {object} dto.ErrorResponse "Armazenamento desligado"
// @Router       /arquivos/{entity}/{entityId} [post]
func Upload(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, table, ok := entity(c)
		if !ok {
			return
		}
		entityID := c.Param("entityId")

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSize+(1<<20))
		header, err := c.FormFile("file")
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(c, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "File exceeds 10 MB", nil))
				return
			}
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "File field is required", err.Error()))
			return
		}
		if header.Size > MaxSize {
			c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(c, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "File exceeds 10 MB", nil))
			return
		}

		f, err := header.Open()
		if err != nil {
			crud.Fail(c, err, "Failed to read file")
			return
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			crud.Fail(c, err, "Failed to read file")
			return
		}

		contentType := http.DetectContentType(content)
		if _, ok := utils.ArquivoContentTypes[contentType]; !ok {
			c.JSON(http.StatusUnsupportedMediaType, dto.NewErrorResponse(c, http.StatusUnsupportedMediaType, "Unsupported Media Type",
				"Only JPEG, PNG and PDF files are accepted", contentType))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		exists, err := cfg.DB.RowExists(ctx, table, entityID)
		if err != nil {
			crud.Fail(c, err, "Failed to upload file")
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(c, http.StatusNotFound, "Not Found", "Record not found", gin.H{"entity": name, "id": entityID}))
			return
		}

		info := mongo.FileInfo{
			Entity:      name,
			EntityID:    entityID,
			Filename:    filepath.Base(header.Filename),
			ContentType: contentType,
		}
		if claims, ok := middleware.CurrentUser(c); ok {
			info.UploadedBy = claims.UserID
		}
		saved, err := cfg.Files.Upload(ctx, info, bytes.NewReader(content))
		if err != nil {
			fail(c, err, "Failed to upload file")
			return
		}
		crud.Audit(ctx, c, cfg, "arquivos", saved.ID, mongo.ActionCreate, saved)
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(c, saved, "File uploaded"))
	}
}

// List lista os anexos de um registro
// @Summary      Listar anexos
// @Tags         arquivos
// @Produce      json
// @Security     BearerAuth
// @Param        entity    path string true "Entidade"
// @Param        entityId  path string true "ID do registro"
// @Success      200 {object} dto.SuccessResponse{data=[]mongo.FileInfo}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      503 {object} dto.ErrorResponse "Armazenamento desligado"
// @Router       /arquivos/{entity}/{entityId} [get]
func List(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, _, ok := entity(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		files, err := cfg.Files.List(ctx, name, c.Param("entityId"))
		if err != nil {
			fail(c, err, "Failed to list files")
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, files, ""))
	}
}

// Download envia o conteúdo do anexo
// @Summary      Baixar anexo
// @Tags         arquivos
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id path string true "ID do arquivo"
// @Success      200 {file} file
// @Failure      404 {object} dto.ErrorResponse "Arquivo não encontrado"
// @Failure      503 {object} dto.ErrorResponse "Armazenamento desligado"
// @Router       /arquivos/{id} [get]
func Download(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		info, rc, err := cfg.Files.Open(ctx, c.Param("ref"))
		if err != nil {
			fail(c, err, "Failed to download file")
			return
		}
		defer rc.Close()

		c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": info.Filename}),
		})
	}
}

// Delete remove um anexo
// @Summary      Remover anexo
// @Tags         arquivos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID do arquivo"
// @Success      200 {object} dto.SuccessResponse{data=mongo.FileInfo}
// @Failure      404 {object} dto.ErrorResponse "Arquivo não encontrado"
// @Failure      503 {object} dto.ErrorResponse "Armazenamento desligado"
// @Router       /arquivos/{id} [delete]
func Delete(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		info, err := cfg.Files.Delete(ctx, c.Param("ref"))
		if err != nil {
			fail(c, err, "Failed to delete file")
			return
		}
		crud.Audit(ctx, c, cfg, "arquivos", info.ID, mongo.ActionDelete, nil)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, info, "File deleted"))
	}
}
