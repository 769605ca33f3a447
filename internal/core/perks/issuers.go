package perks

import (
	"regexp"

	"github.com/joseph-ayodele/perks-tracker/constants"
)

// DefaultProfiles returns fresh copies of the built-in issuer profiles in
// dispatch order, generic last.
func DefaultProfiles() []IssuerProfile {
	return []IssuerProfile{
		amexProfile(),
		chaseProfile(),
		capitalOneProfile(),
		citiProfile(),
		bankOfAmericaProfile(),
		wellsFargoProfile(),
		genericProfile(),
	}
}

func amexProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerAmex,
		DisplayName: "American Express",
		Layout:      LayoutBlock,
		Keywords:    []string{"amex offers", "american express", "amex", "arnex offers", "membership rewards"},
		Merchants: []Merchant{
			{Name: "Nordstrom", Variants: []string{"Nordstrom.com", "Nordstrom Rack"}},
			{Name: "Best Buy", Variants: []string{"BestBuy", "BestBuy.com"}},
			{Name: "Dell Technologies", Variants: []string{"Dell", "Dell.com"}},
			{Name: "Hilton", Variants: []string{"Hilton Hotels", "Hilton Hotels & Resorts"}},
			{Name: "Marriott Bonvoy", Variants: []string{"Marriott"}},
			{Name: "Saks Fifth Avenue", Variants: []string{"Saks", "Saks OFF 5TH"}},
			{Name: "Staples", Variants: []string{"Staples.com"}},
			{Name: "Hertz"},
			{Name: "Audible", Variants: []string{"Audible.com"}},
			{Name: "lululemon", Variants: []string{"Lululemon Athletica"}},
			{Name: "Wayfair"},
			{Name: "Grubhub", Variants: []string{"Grub Hub"}},
			{Name: "Avis"},
			{Name: "Verizon", Variants: []string{"Verizon Wireless", "Verizon Fios"}},
			{Name: "Walmart+", Variants: []string{"Walmart Plus"}},
			{Name: "Uber Eats", Variants: []string{"UberEats"}},
			{Name: "Resy"},
			{Name: "Goldbelly"},
			{Name: "Forever 21", Variants: []string{"Forever21"}},
		},
		Substitutions: []Substitution{
			{Pattern: regexp.MustCompile(`\bArnex\b`), Replace: "Amex"},
			{Pattern: regexp.MustCompile(`(?i)\bmembershlp\b`), Replace: "Membership"},
		},
		Noise: []string{
			"Amex Offers", "American Express", "Membership Rewards", "Offers for You",
			"Added to Card", "Add to Card", "Statements & Activity", "Membership",
			"Account Services", "Added Offers", "Available", "Explore Offers",
		},
	}
}

func chaseProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerChase,
		DisplayName: "Chase",
		Layout:      LayoutSharedLine,
		Keywords:    []string{"chase offers", "chase", "ultimate rewards", "sapphire preferred", "sapphire reserve", "freedom unlimited"},
		Merchants: []Merchant{
			{Name: "Dyson"},
			{Name: "Arlo"},
			{Name: "Sephora"},
			{Name: "Walgreens"},
			{Name: "Lowe's", Variants: []string{"Lowes", "Lowe s"}},
			{Name: "Instacart"},
			{Name: "DoorDash", Variants: []string{"Door Dash"}},
			{Name: "Starbucks"},
			{Name: "Chewy", Variants: []string{"Chewy.com"}},
			{Name: "Hulu"},
			{Name: "Bose"},
			{Name: "Priceline", Variants: []string{"Priceline.com"}},
			{Name: "Expedia"},
			{Name: "Ulta Beauty", Variants: []string{"Ulta"}},
			{Name: "Petco"},
			{Name: "Under Armour", Variants: []string{"UnderArmour"}},
			{Name: "Dunkin'", Variants: []string{"Dunkin", "Dunkin Donuts"}},
			{Name: "Panera Bread", Variants: []string{"Panera"}},
		},
		Substitutions: []Substitution{
			{Pattern: regexp.MustCompile(`(?i)\bcash\s+bk\b`), Replace: "cash back"},
			{Pattern: regexp.MustCompile(`\bChace\b`), Replace: "Chase"},
		},
		Noise: []string{
			"Chase Offers", "Chase", "All offers", "Expiring soon", "Shopping", "Travel",
			"Dining", "Home & Garden", "Entertainment", "Gas & Auto", "Ultimate Rewards",
			"Add to card", "Added", "Offers just for you",
		},
		MultiMerchantPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^(.+?)\s+[|•·]\s+(.+?)(?:\s+[|•·]\s+(.+?))?(?:\s+[|•·]\s+(.+?))?$`),
		},
	}
}

func capitalOneProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerCapitalOne,
		DisplayName: "Capital One",
		Layout:      LayoutSharedLine,
		Keywords:    []string{"capital one offers", "capital one", "capitalone", "venture x", "quicksilver", "savorone"},
		Merchants: []Merchant{
			{Name: "Walmart", Variants: []string{"Walmart.com"}},
			{Name: "Target", Variants: []string{"Target.com"}},
			{Name: "Macy's", Variants: []string{"Macys", "Macy s"}},
			{Name: "Kohl's", Variants: []string{"Kohls"}},
			{Name: "Home Depot", Variants: []string{"The Home Depot"}},
			{Name: "Adidas"},
			{Name: "Nike"},
			{Name: "Sam's Club", Variants: []string{"Sams Club"}},
			{Name: "Hotels.com", Variants: []string{"Hotels com"}},
			{Name: "Vrbo"},
			{Name: "Turo"},
			{Name: "Ticketmaster"},
		},
		Substitutions: []Substitution{
			{Pattern: regexp.MustCompile(`(?i)\bmiIes\b`), Replace: "miles"},
			{Pattern: regexp.MustCompile(`(?i)\bcapita1\b`), Replace: "Capital"},
		},
		Noise: []string{
			"Capital One Offers", "Capital One", "Shop with Capital One Offers", "Featured",
			"Trending", "Top Picks", "Shop Now", "Earn on top of your card rewards",
		},
		MultiMerchantPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^(.+?)\s+[|•·]\s+(.+?)(?:\s+[|•·]\s+(.+?))?$`),
		},
	}
}

func citiProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerCiti,
		DisplayName: "Citi",
		Layout:      LayoutBlock,
		Keywords:    []string{"citi merchant offers", "citi offers", "citi", "citibank", "thankyou"},
		Merchants: []Merchant{
			{Name: "Amazon", Variants: []string{"Amazon.com"}},
			{Name: "Apple", Variants: []string{"Apple Store"}},
			{Name: "Costco"},
			{Name: "CVS", Variants: []string{"CVS Pharmacy"}},
			{Name: "Home Chef"},
			{Name: "HelloFresh", Variants: []string{"Hello Fresh"}},
			{Name: "Shell"},
			{Name: "Spotify"},
			{Name: "Lyft"},
		},
		Substitutions: []Substitution{
			{Pattern: regexp.MustCompile(`(?i)\bthank\s?you\b`), Replace: "ThankYou"},
			{Pattern: regexp.MustCompile(`\bCltl\b`), Replace: "Citi"},
		},
		Noise: []string{
			"Citi Merchant Offers", "Citi Offers", "Citi", "Enrolled", "Enroll in offer",
			"ThankYou Rewards", "Offer Details",
		},
	}
}

func bankOfAmericaProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerBankOfAmerica,
		DisplayName: "Bank of America",
		Layout:      LayoutBlock,
		Keywords:    []string{"bank of america", "bankamerideals", "bofa"},
		Merchants: []Merchant{
			{Name: "Nike"},
			{Name: "Peacock"},
			{Name: "Cole Haan"},
			{Name: "Crocs"},
			{Name: "Papa John's", Variants: []string{"Papa Johns"}},
			{Name: "Jiffy Lube"},
			{Name: "GameStop"},
		},
		Substitutions: []Substitution{
			{Pattern: regexp.MustCompile(`(?i)\bbankamerideal(s)?\b`), Replace: "BankAmeriDeals"},
		},
		Noise: []string{
			"BankAmeriDeals", "Bank of America", "Select Deals", "My Deals", "Preferred Rewards",
		},
	}
}

func wellsFargoProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerWellsFargo,
		DisplayName: "Wells Fargo",
		Layout:      LayoutBlock,
		Keywords:    []string{"wells fargo", "my wells fargo deals", "wells fargo rewards"},
		Merchants: []Merchant{
			{Name: "DoorDash"},
			{Name: "Hulu"},
			{Name: "Jamba", Variants: []string{"Jamba Juice"}},
			{Name: "Zappos"},
			{Name: "Fandango"},
		},
		Noise: []string{
			"My Wells Fargo Deals", "Wells Fargo", "Activate Deal", "Activated",
		},
	}
}

func genericProfile() IssuerProfile {
	return IssuerProfile{
		Key:         constants.IssuerGeneric,
		DisplayName: "Generic",
		Layout:      LayoutGeneric,
	}
}
