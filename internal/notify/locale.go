package notify

type Locale string

const (
	Italian Locale = "it"
	German  Locale = "de"
	English Locale = "en"

	// FallbackLocale is used for any locale without its own strings.
	FallbackLocale = English
)

// Strings is the fixed set of phrases the booking emails use.
type Strings struct {
	Subject       string
	Greeting      string
	Confirmation  string
	Service       string
	Duration      string
	Date          string
	Time          string
	Price         string
	Notes         string
	Minutes       string
	AddToCalendar string
	Footer        string
	NotifySubject string
	NotifyMessage string
	Client        string
	Phone         string
}

var translations = map[Locale]Strings{
	Italian: {
		Subject:       "Conferma Prenotazione - BEN&ESSERE",
		Greeting:      "Ciao",
		Confirmation:  "La tua prenotazione è stata confermata!",
		Service:       "Servizio",
		Duration:      "Durata",
		Date:          "Data",
		Time:          "Orario",
		Price:         "Prezzo",
		Notes:         "Note",
		Minutes:       "Minuti",
		AddToCalendar: "Aggiungi al Calendario",
		Footer:        "Grazie per aver scelto BEN&ESSERE. Non vediamo l'ora di vederti!",
		NotifySubject: "Nuova Prenotazione",
		NotifyMessage: "Hai una nuova prenotazione:",
		Client:        "Cliente",
		Phone:         "Telefono",
	},
	German: {
		Subject:       "Buchungsbestätigung - BEN&ESSERE",
		Greeting:      "Hallo",
		Confirmation:  "Ihre Buchung wurde bestätigt!",
		Service:       "Leistung",
		Duration:      "Dauer",
		Date:          "Datum",
		Time:          "Uhrzeit",
		Price:         "Preis",
		Notes:         "Anmerkungen",
		Minutes:       "Minuten",
		AddToCalendar: "Zum Kalender hinzufügen",
		Footer:        "Vielen Dank, dass Sie sich für BEN&ESSERE entschieden haben. Wir freuen uns auf Sie!",
		NotifySubject: "Neue Buchung",
		NotifyMessage: "Sie haben eine neue Buchung:",
		Client:        "Kunde",
		Phone:         "Telefon",
	},
	English: {
		Subject:       "Booking Confirmation - BEN&ESSERE",
		Greeting:      "Hello",
		Confirmation:  "Your booking has been confirmed!",
		Service:       "Service",
		Duration:      "Duration",
		Date:          "Date",
		Time:          "Time",
		Price:         "Price",
		Notes:         "Notes",
		Minutes:       "Minutes",
		AddToCalendar: "Add to Calendar",
		Footer:        "Thank you for choosing BEN&ESSERE. We look forward to seeing you!",
		NotifySubject: "New Booking",
		NotifyMessage: "You have a new booking:",
		Client:        "Client",
		Phone:         "Phone",
	},
}

// Lookup returns the strings for locale, falling back to English.
func Lookup(locale string) Strings {
	if s, ok := translations[Locale(locale)]; ok {
		return s
	}
	return translations[FallbackLocale]
}

// Supported reports whether locale has its own strings.
func Supported(locale string) bool {
	_, ok := translations[Locale(locale)]
	return ok
}
