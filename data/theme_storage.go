package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"invitation_server_go/models"

	"github.com/tidwall/jsonc"
)

// ThemeManifestFile - имя файла манифеста внутри директории темы.
const ThemeManifestFile = "theme.json"

// ThemeStorage - реестр тем. Каждая тема - директория themes/<id> с манифестом и файлами.
type ThemeStorage interface {
	ListThemes(ctx context.Context) ([]models.ThemeManifest, error)
	GetTheme(ctx context.Context, themeID string) (models.ThemeManifest, error)
	// AssetPath возвращает абсолютный путь к файлу темы.
	// Путь за пределами директории темы дает ErrForbidden.
	AssetPath(ctx context.Context, themeID, relativePath string) (string, error)
}

// FileThemeStorage читает темы из директории на диске.
type FileThemeStorage struct {
	root string
}

// NewFileThemeStorage создает реестр тем с корнем root.
func NewFileThemeStorage(root string) *FileThemeStorage {
	return &FileThemeStorage{root: root}
}

// ListThemes возвращает манифесты всех тем. Директории без theme.json пропускаются.
func (s *FileThemeStorage) ListThemes(ctx context.Context) ([]models.ThemeManifest, error) {
	themes := []models.ThemeManifest{}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return themes, nil
		}
		return nil, storageError("listing themes", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := s.readManifest(entry.Name())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		themes = append(themes, manifest)
	}
	return themes, nil
}

// GetTheme возвращает манифест темы themeID.
func (s *FileThemeStorage) GetTheme(ctx context.Context, themeID string) (models.ThemeManifest, error) {
	if !validThemeID(themeID) {
		return models.ThemeManifest{}, ErrNotFound
	}
	info, err := os.Stat(filepath.Join(s.root, themeID))
	if err != nil {
		if isNotExist(err) {
			return models.ThemeManifest{}, ErrNotFound
		}
		return models.ThemeManifest{}, storageError("reading theme", err)
	}
	if !info.IsDir() {
		return models.ThemeManifest{}, ErrNotFound
	}
	return s.readManifest(themeID)
}

// AssetPath разрешает relativePath внутри директории темы.
// Обе стороны приводятся к каноническому абсолютному виду (с раскрытием симлинков),
// после чего результат обязан быть потомком директории темы.
func (s *FileThemeStorage) AssetPath(ctx context.Context, themeID, relativePath string) (string, error) {
	if !validThemeID(themeID) {
		return "", ErrNotFound
	}
	themeDir, err := canonicalPath(filepath.Join(s.root, themeID))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(themeDir)
	if err != nil || !info.IsDir() {
		return "", ErrNotFound
	}

	if relativePath == "" || strings.ContainsRune(relativePath, 0) {
		return "", ErrNotFound
	}
	if filepath.IsAbs(relativePath) || strings.HasPrefix(relativePath, "/") || strings.HasPrefix(relativePath, `\`) || filepath.VolumeName(relativePath) != "" {
		return "", fmt.Errorf("absolute asset path %q: %w", relativePath, ErrForbidden)
	}

	requested := filepath.Join(themeDir, filepath.FromSlash(relativePath))
	if !isWithin(themeDir, requested) {
		return "", fmt.Errorf("asset path %q escapes theme %q: %w", relativePath, themeID, ErrForbidden)
	}
	resolved, err := canonicalPath(requested)
	if err != nil {
		return "", err
	}
	// Симлинк внутри темы мог указывать наружу.
	if !isWithin(themeDir, resolved) {
		return "", fmt.Errorf("asset path %q escapes theme %q: %w", relativePath, themeID, ErrForbidden)
	}

	info, err = os.Stat(resolved)
	if err != nil {
		if isNotExist(err) {
			return "", ErrNotFound
		}
		return "", storageError("reading theme asset", err)
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return resolved, nil
}

func (s *FileThemeStorage) readManifest(themeID string) (models.ThemeManifest, error) {
	path := filepath.Join(s.root, themeID, ThemeManifestFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return models.ThemeManifest{}, ErrNotFound
		}
		return models.ThemeManifest{}, storageError("reading theme manifest", err)
	}

	// Манифесты правят руками: разрешаем комментарии и висячие запятые.
	stripped := jsonc.ToJSON(raw)
	var manifest models.ThemeManifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return models.ThemeManifest{}, storageError("parsing theme manifest "+themeID, err)
	}
	manifest.ID = themeID
	manifest.Raw = json.RawMessage(stripped)
	if manifest.Name == "" {
		manifest.Name = themeID
	}
	return manifest, nil
}

// validThemeID допускает только один элемент пути.
func validThemeID(themeID string) bool {
	if themeID == "" || themeID == "." || themeID == ".." {
		return false
	}
	return !strings.ContainsAny(themeID, "/\\\x00") && filepath.VolumeName(themeID) == ""
}

// canonicalPath возвращает абсолютный путь с раскрытыми симлинками.
// Для несуществующего пути раскрывается ближайший существующий предок.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", storageError("resolving path", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !isNotExist(err) {
		return "", storageError("resolving path", err)
	}
	parent, base := filepath.Split(abs)
	parent = filepath.Clean(parent)
	if parent == abs {
		return abs, nil
	}
	resolvedParent, err := canonicalPath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, base), nil
}

// isNotExist считает отсутствующим и путь, проходящий через обычный файл (ENOTDIR).
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// isWithin сообщает, лежит ли path строго внутри dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
