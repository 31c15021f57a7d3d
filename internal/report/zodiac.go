package report

import (
	"strings"
	"time"
)

// UnknownSign is returned when a date of birth cannot be parsed.
const UnknownSign = "Unknown"

// accepts both zero-padded and bare month/day
const dobLayout = "2006-1-2"

type monthDay struct{ month, day int }

func (a monthDay) before(b monthDay) bool {
	return a.month < b.month || (a.month == b.month && a.day < b.day)
}

type signRange struct {
	name       string
	start, end monthDay
}

var zodiacSigns = []signRange{
	{"Capricorn", monthDay{1, 1}, monthDay{1, 19}},
	{"Aquarius", monthDay{1, 20}, monthDay{2, 18}},
	{"Pisces", monthDay{2, 19}, monthDay{3, 20}},
	{"Aries", monthDay{3, 21}, monthDay{4, 19}},
	{"Taurus", monthDay{4, 20}, monthDay{5, 20}},
	{"Gemini", monthDay{5, 21}, monthDay{6, 20}},
	{"Cancer", monthDay{6, 21}, monthDay{7, 22}},
	{"Leo", monthDay{7, 23}, monthDay{8, 22}},
	{"Virgo", monthDay{8, 23}, monthDay{9, 22}},
	{"Libra", monthDay{9, 23}, monthDay{10, 22}},
	{"Scorpio", monthDay{10, 23}, monthDay{11, 21}},
	{"Sagittarius", monthDay{11, 22}, monthDay{12, 21}},
	{"Capricorn", monthDay{12, 22}, monthDay{12, 31}},
}

var famousBySign = map[string][]string{
	"Aries":       {"Ajay Devgn", "Kapil Sharma", "Dr. A.P.J. Abdul Kalam", "Emraan Hashmi", "Robert Downey Jr."},
	"Taurus":      {"Sachin Tendulkar", "Anushka Sharma", "G. D. Naidu", "Madhuri Dixit", "David Beckham"},
	"Gemini":      {"Sonam Kapoor", "Shilpa Shetty", "Karan Johar", "Dr. B. R. Ambedkar", "Angelina Jolie"},
	"Cancer":      {"Priyanka Chopra", "MS Dhoni", "Ranveer Singh", "J. R. D. Tata", "Ariana Grande"},
	"Leo":         {"Saif Ali Khan", "Sridevi", "Jacqueline Fernandez", "Bal Gangadhar Tilak", "Barack Obama"},
	"Virgo":       {"Akshay Kumar", "Kareena Kapoor", "Narendra Modi", "Verghese Kurien", "Michael Jackson"},
	"Libra":       {"Amitabh Bachchan", "Rekha", "Ranbir Kapoor", "Dr. Vikram Sarabhai", "Will Smith"},
	"Scorpio":     {"Shah Rukh Khan", "Aishwarya Rai", "Sushmita Sen", "Lal Bahadur Shastri", "Bill Gates"},
	"Sagittarius": {"Yami Gautam", "Dharmendra", "John Abraham", "Kalpana Chawla", "Taylor Swift"},
	"Capricorn":   {"Deepika Padukone", "Hrithik Roshan", "Javed Akhtar", "Swami Vivekananda", "Michelle Obama"},
	"Aquarius":    {"Preity Zinta", "Abhishek Bachchan", "Jackie Shroff", "Ratan Tata", "Oprah Winfrey"},
	"Pisces":      {"Alia Bhatt", "Shahid Kapoor", "Tiger Shroff", "C. V. Raman", "Albert Einstein"},
}

// Zodiac returns the sun sign for a YYYY-MM-DD date of birth and a copy of
// the famous people sharing it. Unparseable input yields UnknownSign and an
// empty, non-nil slice.
func Zodiac(dob string) (string, []string) {
	t, err := time.Parse(dobLayout, strings.TrimSpace(dob))
	if err != nil {
		return UnknownSign, []string{}
	}
	md := monthDay{int(t.Month()), t.Day()}
	for _, s := range zodiacSigns {
		if !md.before(s.start) && !s.end.before(md) {
			return s.name, append([]string{}, famousBySign[s.name]...)
		}
	}
	return UnknownSign, []string{}
}
