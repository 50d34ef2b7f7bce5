package objects

import (
	"strings"
)

type PublicationType string

const (
	PublicationTypeUnset      PublicationType = ""
	PublicationTypeJournal    PublicationType = "Journal Paper"
	PublicationTypeConference PublicationType = "Conference Proceedings"
)

// ParsePublicationType accepts the display names and their compact forms,
// e.g. "JournalPaper", "journal paper" or "conference".
func ParsePublicationType(s string) (PublicationType, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))

	switch key {
	case "":
		return PublicationTypeUnset, true
	case "journalpaper", "journal":
		return PublicationTypeJournal, true
	case "conferenceproceedings", "conferenceproceeding", "conference":
		return PublicationTypeConference, true
	default:
		return PublicationTypeUnset, false
	}
}

type UGCApproval string

const (
	UGCApprovalUnset UGCApproval = ""
	UGCApprovalYes   UGCApproval = "Yes"
	UGCApprovalNo    UGCApproval = "No"
)

func ParseUGCApproval(s string) (UGCApproval, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UGCApprovalUnset, true
	case "yes", "y", "true":
		return UGCApprovalYes, true
	case "no", "n", "false":
		return UGCApprovalNo, true
	default:
		return UGCApprovalUnset, false
	}
}

// Publication is one faculty publication record. Email is the owner of the record.
type Publication struct {
	ID              int64           `json:"id"`
	PublicationType PublicationType `json:"publicationType"`
	MainAuthor      string          `json:"mainAuthor"`
	Title           string          `json:"title"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Dept            string          `json:"dept"`
	Coauthors       string          `json:"coauthors"`
	Journal         string          `json:"journal"`
	Publisher       string          `json:"publisher"`
	Year            *int            `json:"year"`
	Vol             string          `json:"vol"`
	IssueNo         string          `json:"issueNo"`
	Pages           string          `json:"pages"`
	Indexation      string          `json:"indexation"`
	IssnNo          string          `json:"issnNo"`
	JournalLink     string          `json:"journalLink"`
	UGCApproved     UGCApproval     `json:"ugcApproved"`
	ImpactFactor    string          `json:"impactFactor"`
	PdfURL          string          `json:"pdfUrl"`
}

// PublicationPatch is a partial update keyed by ID. Nil fields keep the stored value.
type PublicationPatch struct {
	ID              int64            `json:"id"`
	PublicationType *PublicationType `json:"publicationType,omitempty"`
	MainAuthor      *string          `json:"mainAuthor,omitempty"`
	Title           *string          `json:"title,omitempty"`
	Email           *string          `json:"email,omitempty"`
	Phone           *string          `json:"phone,omitempty"`
	Dept            *string          `json:"dept,omitempty"`
	Coauthors       *string          `json:"coauthors,omitempty"`
	Journal         *string          `json:"journal,omitempty"`
	Publisher       *string          `json:"publisher,omitempty"`
	Year            *int             `json:"year,omitempty"`
	Vol             *string          `json:"vol,omitempty"`
	IssueNo         *string          `json:"issueNo,omitempty"`
	Pages           *string          `json:"pages,omitempty"`
	Indexation      *string          `json:"indexation,omitempty"`
	IssnNo          *string          `json:"issnNo,omitempty"`
	JournalLink     *string          `json:"journalLink,omitempty"`
	UGCApproved     *UGCApproval     `json:"ugcApproved,omitempty"`
	ImpactFactor    *string          `json:"impactFactor,omitempty"`
	PdfURL          *string          `json:"pdfUrl,omitempty"`
}

// IsEmpty reports whether the patch sets no field at all.
func (p PublicationPatch) IsEmpty() bool {
	return p.PublicationType == nil && p.MainAuthor == nil && p.Title == nil && p.Email == nil &&
		p.Phone == nil && p.Dept == nil && p.Coauthors == nil && p.Journal == nil &&
		p.Publisher == nil && p.Year == nil && p.Vol == nil && p.IssueNo == nil &&
		p.Pages == nil && p.Indexation == nil && p.IssnNo == nil && p.JournalLink == nil &&
		p.UGCApproved == nil && p.ImpactFactor == nil && p.PdfURL == nil
}

// Apply returns a copy of pub with every set field of the patch overwritten.
func (p PublicationPatch) Apply(pub Publication) Publication {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	if p.PublicationType != nil {
		pub.PublicationType = *p.PublicationType
	}

	setString(&pub.MainAuthor, p.MainAuthor)
	setString(&pub.Title, p.Title)
	setString(&pub.Email, p.Email)
	setString(&pub.Phone, p.Phone)
	setString(&pub.Dept, p.Dept)
	setString(&pub.Coauthors, p.Coauthors)
	setString(&pub.Journal, p.Journal)
	setString(&pub.Publisher, p.Publisher)

	if p.Year != nil {
		year := *p.Year
		pub.Year = &year
	}

	setString(&pub.Vol, p.Vol)
	setString(&pub.IssueNo, p.IssueNo)
	setString(&pub.Pages, p.Pages)
	setString(&pub.Indexation, p.Indexation)
	setString(&pub.IssnNo, p.IssnNo)
	setString(&pub.JournalLink, p.JournalLink)

	if p.UGCApproved != nil {
		pub.UGCApproved = *p.UGCApproved
	}

	setString(&pub.ImpactFactor, p.ImpactFactor)
	setString(&pub.PdfURL, p.PdfURL)

	return pub
}
