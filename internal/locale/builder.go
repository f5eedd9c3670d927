package locale

import "strings"

// Builder configures a Labels value.
//
//	labels := locale.New("he").WithCurrency("₪").Build()
type Builder struct {
	lang      string
	currency  string
	thousands string
}

// New starts a builder for lang. Unknown languages fall back to English.
func New(lang string) *Builder {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := catalog[lang]; !ok {
		lang = "en"
	}
	return &Builder{lang: lang, currency: "₪", thousands: ","}
}

// WithCurrency sets the currency symbol.
func (b *Builder) WithCurrency(symbol string) *Builder {
	b.currency = symbol
	return b
}

// WithThousandsSeparator sets the digit group separator.
func (b *Builder) WithThousandsSeparator(sep string) *Builder {
	b.thousands = sep
	return b
}

// Build returns the finished labels.
func (b *Builder) Build() Labels {
	l := catalog[b.lang]
	l.Lang = b.lang
	l.currency = b.currency
	l.thousands = b.thousands
	return l
}

// Supported lists the available languages.
func Supported() []string { return []string{"en", "he"} }

var catalog = map[string]Labels{
	"en": {
		Title:            "Budget Tracking",
		TabSetup:         "Budget Setup",
		TabAnalysis:      "Analysis",
		TabTemplates:     "Templates",
		AnalysisFor:      "Budget Analysis for %s",
		YearProgress:     "Year Progress",
		YearCompleted:    "%s of year completed",
		Budget:           "Budget",
		Spent:            "Spent",
		Expected:         "Expected",
		OverBy:           "Over by",
		UnderBy:          "Under by",
		MonthlyAverage:   "Monthly average",
		Projection:       "Yearly projection",
		Category:         "Category",
		Status:           "Status",
		LaneOver:         "Over Budget",
		LaneOnTrack:      "On Track",
		LaneUnder:        "Under Spending",
		StatusOver:       "Over budget",
		StatusOnTrack:    "On track",
		StatusUnder:      "Under spending",
		StatusUnbudgeted: "Unbudgeted",
		StatusNone:       "No activity",
		VerdictOver:      "Over budget",
		VerdictWithin:    "Within budget",
		VerdictNone:      "No budget set",
		TemplateName:     "Template Name",
		SaveTemplate:     "Save Template",
		LoadTemplate:     "Load Template",
		NoTemplates:      "No saved templates",
		NoActivity:       "No categories with budget or spend",
		CategoryBudgets:  "Category Budgets",
		SpendingByYear:   "Spending by Year",
		NoLedger:         "No ledger loaded. Press l to open a ledger file or directory.",
	},
	"he": {
		RTL:              true,
		Title:            "מעקב תקציב",
		TabSetup:         "הגדרת תקציב",
		TabAnalysis:      "ניתוח",
		TabTemplates:     "תבניות",
		AnalysisFor:      "ניתוח תקציב לשנת %s",
		YearProgress:     "התקדמות השנה",
		YearCompleted:    "%s מהשנה עברו",
		Budget:           "תקציב",
		Spent:            "הוצאה",
		Expected:         "צפוי",
		OverBy:           "חריגה של",
		UnderBy:          "מתחת ב",
		MonthlyAverage:   "ממוצע חודשי",
		Projection:       "תחזית שנתית",
		Category:         "קטגוריה",
		Status:           "מצב",
		LaneOver:         "חריגה מהתקציב",
		LaneOnTrack:      "בקצב",
		LaneUnder:        "הוצאה נמוכה",
		StatusOver:       "חריגה",
		StatusOnTrack:    "בקצב",
		StatusUnder:      "הוצאה נמוכה",
		StatusUnbudgeted: "ללא תקציב",
		StatusNone:       "ללא פעילות",
		VerdictOver:      "חריגה מהתקציב",
		VerdictWithin:    "בתוך התקציב",
		VerdictNone:      "לא הוגדר תקציב",
		TemplateName:     "שם תבנית",
		SaveTemplate:     "שמור תבנית",
		LoadTemplate:     "טען תבנית",
		NoTemplates:      "אין תבניות שמורות",
		NoActivity:       "אין קטגוריות עם תקציב או הוצאה",
		CategoryBudgets:  "תקציב לפי קטגוריה",
		SpendingByYear:   "הוצאות לפי שנה",
		NoLedger:         "לא נטען קובץ. לחצו l לפתיחת קובץ או תיקייה.",
	},
}
