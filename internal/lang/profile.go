// Package lang defines the per-language profiles used by the alignment
// engine: filler-word stoplists for signal extraction and abbreviation sets
// for sentence boundary detection.
//
// Profiles for German, Spanish, French, and English are built in. Additional
// languages (or extensions to the built-in lists) can be installed at startup
// via [Register]; the registry is safe for concurrent reads afterwards.
package lang

import (
	"strings"
	"sync"
)

// Language identifies a source or bridge language by its ISO 639-1 code.
type Language string

const (
	German  Language = "de"
	Spanish Language = "es"
	French  Language = "fr"
	English Language = "en"
)

// IsValid reports whether l is a language with a built-in profile.
func (l Language) IsValid() bool {
	switch l {
	case German, Spanish, French, English:
		return true
	}
	return false
}

// Profile holds the closed word lists for one language. All words are stored
// lowercased and without trailing periods.
type Profile struct {
	// Fillers are articles, pronouns, auxiliaries, and common
	// prepositions/conjunctions that carry no alignment signal and are
	// dropped before signal extraction.
	Fillers map[string]struct{}

	// Abbreviations are tokens that end with a period without ending a
	// sentence: titles, measurement shorthands, and weekday/month
	// abbreviations.
	Abbreviations map[string]struct{}
}

// IsFiller reports whether word (compared lowercased) is a filler word.
func (p Profile) IsFiller(word string) bool {
	_, ok := p.Fillers[strings.ToLower(word)]
	return ok
}

// IsAbbreviation reports whether token (compared lowercased, without its
// trailing period) is a known abbreviation.
func (p Profile) IsAbbreviation(token string) bool {
	token = strings.TrimSuffix(strings.ToLower(token), ".")
	_, ok := p.Abbreviations[token]
	return ok
}

var (
	registryMu sync.RWMutex
	registry   = map[Language]Profile{
		German:  german(),
		Spanish: spanish(),
		French:  french(),
		English: english(),
	}
)

// ProfileFor returns the registered profile for l. Unknown languages get an
// empty profile: segmentation still works on the structural rules alone and
// signal extraction keeps every word.
func ProfileFor(l Language) Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if p, ok := registry[l]; ok {
		return p
	}
	return Profile{}
}

// Register installs (or replaces) the profile for l. Intended for startup
// configuration; concurrent use with ProfileFor is safe.
func Register(l Language, p Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if p.Fillers == nil {
		p.Fillers = map[string]struct{}{}
	}
	if p.Abbreviations == nil {
		p.Abbreviations = map[string]struct{}{}
	}
	registry[l] = p
}

// wordSet builds a lookup set from a space-separated word list.
func wordSet(words string) map[string]struct{} {
	fields := strings.Fields(words)
	set := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		set[w] = struct{}{}
	}
	return set
}

func german() Profile {
	return Profile{
		Fillers: wordSet(`
			der die das den dem des ein eine einen einem einer eines
			und oder aber doch denn sondern
			ich du er sie es wir ihr man sich mir mich dir dich ihm ihn uns euch ihnen
			mein dein sein ihr unser euer meine seine ihre deren dessen
			ist sind war waren sein bin bist seid gewesen
			hat haben hatte hatten habe hast habt
			wird werden wurde wurden werde wirst werdet worden
			kann können konnte muss müssen musste soll sollen sollte
			will wollen wollte darf dürfen durfte mag mögen möchte
			in im an am auf aus bei mit nach von vom zu zum zur für über unter vor hinter zwischen durch gegen ohne um
			als auch nur noch schon sehr so wie wo da hier dort dann denn weil dass ob wenn nicht kein keine nein ja
			es gibt etwas nichts alle alles viele mehr
		`),
		Abbreviations: wordSet(`
			dr prof hr fr frl dipl ing mag
			bzw ca usw vgl evtl ggf inkl zzgl sog
			z b u a o ä d h s nr abs str
			mo di mi do fr sa so
			jan feb mär mrz apr jun jul aug sep sept okt nov dez
		`),
	}
}

func spanish() Profile {
	return Profile{
		Fillers: wordSet(`
			el la los las un una unos unas lo
			y e o u pero sino porque pues aunque
			yo tú usted él ella ellos ellas nosotros vosotros ustedes
			me te se nos os le les mi tu su sus mis tus nuestro nuestra vuestro
			es son era eran fue fueron ser sido estar está están estaba estaban estado
			ha han había habían haber he hemos
			será serán sería hay
			en de del a al con por para sin sobre entre hasta desde contra según tras
			que qué como cómo cuando dónde donde si no sí ya muy más menos también tampoco
			este esta estos estas ese esa esos esas aquel aquella
			todo toda todos todas algo nada cada otro otra
		`),
		Abbreviations: wordSet(`
			sr sra srta dr dra prof lic ing
			etc pág págs núm tel aprox
			ej p admón avda gral
			lun mar mié mie jue vie sáb sab dom
			ene feb mar abr jun jul ago sep sept oct nov dic
		`),
	}
}

func french() Profile {
	return Profile{
		Fillers: wordSet(`
			le la les l un une des du au aux
			et ou mais donc or ni car
			je tu il elle on nous vous ils elles
			me te se moi toi lui leur y en
			mon ma mes ton ta tes son sa ses notre nos votre vos leurs
			est sont était étaient été être suis es êtes fut
			a ont avait avaient avoir ai as avons avez eu
			sera seront serait
			dans sur sous avec sans pour par de à chez vers entre depuis pendant contre
			que qui quoi dont où quand comme si ne pas plus moins très aussi bien encore déjà
			ce cet cette ces cela ça ceci
			tout toute tous toutes quelque chose rien chaque autre
		`),
		Abbreviations: wordSet(`
			m mm mme mlle dr prof me
			etc env ex cf av bd fg
			no nos p pp vol chap
			lun mar mer jeu ven sam dim
			janv févr fév avr juil sept oct nov déc dec
		`),
	}
}

func english() Profile {
	return Profile{
		Fillers: wordSet(`
			the a an
			and or but nor so yet
			i you he she it we they me him her us them
			my your his its our their mine yours theirs
			this that these those
			is are was were be been being am
			has have had having do does did
			will would can could shall should may might must
			in on at to for with by from of into onto over under about
			as if then than when where which who whom whose what while
			not no nor there here very just also only still too
			all any each every some many much more most other such
		`),
		Abbreviations: wordSet(`
			mr mrs ms dr prof rev gen sen rep st jr sr
			etc vs approx dept est fig inc ltd co corp
			no vol pp ed al
			mon tue tues wed thu thur thurs fri sat sun
			jan feb mar apr jun jul aug sep sept oct nov dec
		`),
	}
}
