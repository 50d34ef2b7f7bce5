package api

import (
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/server/biz"
)

// publicationRequest accepts the year as a number or a numeric string.
type publicationRequest struct {
	objects.Publication

	Year any `json:"year"`
}

func (r publicationRequest) toPublication() (objects.Publication, error) {
	pub := r.Publication

	year, err := biz.ParseYear(r.Year)
	if err != nil {
		return pub, err
	}

	pub.Year = year

	return pub, nil
}

type patchRequest struct {
	objects.PublicationPatch

	Year any `json:"year"`
}

func (r patchRequest) toPatch() (objects.PublicationPatch, error) {
	patch := r.PublicationPatch

	year, err := biz.ParseYear(r.Year)
	if err != nil {
		return patch, err
	}

	patch.Year = year

	return patch, nil
}

type isAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// ImportStatusHeader marks an import response whose ledger stops short of the last row.
const ImportStatusHeader = "X-Import-Status"

// partialImportResponse is returned when the import deadline or the client cut the run short.
type partialImportResponse struct {
	Error  objects.Error    `json:"error"`
	Report biz.ImportReport `json:"report"`
}
