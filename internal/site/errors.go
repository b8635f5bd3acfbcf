package site

import (
	"errors"

	"git.home.luguber.info/inful/gazette/internal/config"
	cerrors "git.home.luguber.info/inful/gazette/internal/content/errors"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/render"
)

// Classify converts package sentinels into classified errors for the CLI.
// Errors that are already classified pass through unchanged.
func Classify(err error, stage string) error {
	if err == nil || ferrors.IsClassified(err) {
		return err
	}

	var b *ferrors.ErrorBuilder
	switch {
	case errors.Is(err, cerrors.ErrPathNotFound), errors.Is(err, config.ErrConfigNotFound):
		b = ferrors.WrapError(err, ferrors.CategoryNotFound, "path not found").Fatal()
	case errors.Is(err, cerrors.ErrMissingField),
		errors.Is(err, cerrors.ErrMalformedContent),
		errors.Is(err, cerrors.ErrInvalidDate):
		b = ferrors.WrapError(err, ferrors.CategoryContent, "content file rejected").Fatal()
	case errors.Is(err, config.ErrConfigExists):
		b = ferrors.WrapError(err, ferrors.CategoryAlreadyExists, "refusing to overwrite").Fatal()
	case errors.Is(err, config.ErrInvalidConfig):
		b = ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").Fatal()
	case errors.Is(err, render.ErrEmptySlug):
		b = ferrors.WrapError(err, ferrors.CategoryRender, "page cannot be rendered").Fatal()
	case stage == StageRender:
		b = ferrors.WrapError(err, ferrors.CategoryRender, "render failed").Fatal()
	default:
		b = ferrors.WrapError(err, ferrors.CategoryBuild, "generation failed")
	}
	return b.WithContext("stage", stage).Build()
}
