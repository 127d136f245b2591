package classifier

// DefaultRuleSetVersion identifies the built-in keyword lists. Bump it
// whenever a pattern is added, removed or moves tier.
const DefaultRuleSetVersion = "2026.01"

// defaultSpamKeywords are definitive spam signals.
var defaultSpamKeywords = []string{
	"casino",
	// pharma
	"viagra", "cialis", "levitra", "xanax", "valium", "vicodin", "prozac", "tamoxifen",
	"methotrexate", "oxycodone", "hydrocodone", "celebrex", "soma", "adderall", "tramadol",
	"trazodone", "ritalin", "klonopin", "ambien", "lorazepam", "effexor", "celexa", "cymbalta",
	"chantix", "sertraline", "lipitor", "zetia", "zocor", "abilify", "zyprexa", "nexium",
	"omeprazole", "cyclobenzaprine", "clomid", "crestor", "fioricet", "lamictal", "simvastatin",
	"diovan", "naproxen", "neurontin", "wellbutrin", "nasonex", "seroquel", "topamax", "prednisone",
	"vistaril", "ultram", "phentermine", "dulcolax", "promethazine", "gabapentin", "fosamax",
	"metformin", "oxcy", "oxycontin", "percocet", "lotrel", "hydroxyzine", "amoxicillin",
	"cephalexin", "clotrimazole", "doxycycline",
	// adult
	"porn", "porno", "xxx", "sex", "orgasm", "pussy", "vagina", "dildo", "cumshot", "tits",
	"titties", "shemale", "incest", "escort", "escorts", "webcam", "camgirl", "camgirls",
	"onlyfans", "fansly", "sextape", "dickpics", "gangbang", "bdsm", "anal", "fetish",
	"pornstars", "nudes", "leaked nudes",
	// gambling
	"online games", "slots", "slot machine", "blackjack", "hold'em", "poker", "roulette",
	"sports betting", "betting odds", "sportsbook", "crypto casino", "crypto betting",
	"crypto gambling", "betfair", "bookmaker", "gambling site",
	// loans and money scams
	"cheap loan", "cheap meds", "cheap drugs", "payday loan", "payday advance",
	"debt consolidation", "cash advance", "free ipad", "free iphone", "free gift card",
	"forex signals", "binary options", "stock trading tips", "make money fast",
	"work from home", "easy loans", "fast cash", "mortgage refinancing",
	// counterfeit and luxury brands
	"replica watches", "fake rolex", "fake handbags", "fake passport", "counterfeit goods",
	"louis vuitton", "gucci", "hermes", "prada", "chanel", "burberry", "rolex replica",
	"oakley replica", "rayban replica",
	// malware
	"hacking tools", "malware download", "torrent download", "phishing site", "keylogger",
	"trojan virus", "botnet hosting",
	// health
	"miracle cure", "weight loss pills", "penis enlargement", "testosterone booster", "hgh",
	"steroids online", "sarms", "peptides", "detox tea", "cbd oil", "kratom", "delta-8",
	"delta-9", "ayahuasca retreat", "shrooms online",
	// pharmacy
	"drug online", "no prescription", "prescription meds", "pharmacy online",
	"online pharmacy", "internet pharmacy",
	// social
	"telegram drugs", "whatsapp dealer", "snapchat nudes", "tiktok followers buy",
	"instagram likes buy",
	// history could not be verified
	"archive.org snapshots with status 403",
}

// defaultPotentialKeywords are advisory signals that need a human look.
var defaultPotentialKeywords = []string{
	"buy cheap", "click here", "free trial", "buy now", "order now", "limited offer",
	"processing error", "insufficient archive.org history",
}

// DefaultRuleSet returns the built-in rule set.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSetFromTiers(DefaultRuleSetVersion, defaultSpamKeywords, defaultPotentialKeywords)
	if err != nil {
		// The lists above are static; a failure here is a programming error.
		panic("classifier: default rule set is invalid: " + err.Error())
	}
	return rs
}
