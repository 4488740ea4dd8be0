package entitlements

var studentTiers = []Tier{
	{
		ID:   "free",
		Name: "Explorer",
		TrackNames: map[CareerTrack]string{
			TrackAviation:         "Ground School",
			TrackSTEM:             "Prototype",
			TrackEntrepreneurship: "Ideation",
		},
		Price:    0,
		Capacity: "Community",
		Features: []string{
			"Profile creation",
			"Intro courses",
			"Event calendar access",
			"Community forum",
			"Basic resources",
		},
	},
	{
		ID:   "bronze",
		Name: "Achiever",
		TrackNames: map[CareerTrack]string{
			TrackAviation:         "First Solo",
			TrackSTEM:             "Debug",
			TrackEntrepreneurship: "Validate",
		},
		Price:    9900,
		Capacity: "1:10",
		Features: []string{
			"Full course library",
			"Progress tracking",
			"Digital badges",
			"Mentor matching (1:10 ratio)",
			"Certification prep materials",
			"Monthly live Q&A sessions",
		},
		PriceEnvKey: "STRIPE_PRICE_STUDENT_BRONZE",
	},
	{
		ID:   "silver",
		Name: "Navigator",
		TrackNames: map[CareerTrack]string{
			TrackAviation:         "Cross-Country",
			TrackSTEM:             "Compile",
			TrackEntrepreneurship: "Accelerate",
		},
		Price:    29900,
		Capacity: "1:5",
		Features: []string{
			"Everything in Achiever tier",
			"Live workshop sessions",
			"Priority mentor matching (1:5 ratio)",
			"Certification exam prep",
			"Priority scholarship applications",
			"Hackathon/competition access",
			"Industry networking events",
		},
		PriceEnvKey: "STRIPE_PRICE_STUDENT_SILVER",
	},
	{
		ID:   "gold",
		Name: "Aviator",
		TrackNames: map[CareerTrack]string{
			TrackAviation:         "Red Tail",
			TrackSTEM:             "Deploy",
			TrackEntrepreneurship: "Scale",
		},
		Price:    59900,
		Capacity: "1:3",
		Features: []string{
			"Everything in Navigator tier",
			"Dedicated mentor (1:3 ratio)",
			"Flight simulator credits",
			"Discovery flight discount",
			"Career coaching sessions",
			"AI/ML advanced tracks",
			"Cloud credits for projects",
			"Employer introduction program",
			"Seed funding connections",
		},
		PriceEnvKey: "STRIPE_PRICE_STUDENT_GOLD",
	},
}

var mentorTiers = []Tier{
	{
		ID:       "volunteer",
		Name:     "Wingman",
		Price:    0,
		Capacity: "1-3",
		Features: []string{
			"Basic profile",
			"Match with 1-3 students",
			"Community forum access",
			"Digital volunteer badge",
			"Volunteer hour tracking",
		},
	},
	{
		ID:       "flight_lead",
		Name:     "Flight Lead",
		Price:    19900,
		Capacity: "5-10",
		Features: []string{
			"Priority student matching (5-10 students)",
			"Mentor training program",
			"Networking events access",
			"Speaking opportunities",
			"Professional development credits",
			"Recognition on platform",
		},
		PriceEnvKey: "STRIPE_PRICE_MENTOR_FLIGHT_LEAD",
	},
	{
		ID:       "squadron_commander",
		Name:     "Squadron Commander",
		Price:    49900,
		Capacity: "10-20",
		Features: []string{
			"Lead mentor groups",
			"Create curriculum modules",
			"Revenue share on courses",
			"VIP event access",
			"Curriculum development tools",
			"Advanced analytics dashboard",
		},
		PriceEnvKey: "STRIPE_PRICE_MENTOR_SQUADRON",
	},
	{
		ID:       "legacy_aviator",
		Name:     "Legacy Aviator",
		Price:    99900,
		Capacity: "Unlimited",
		Features: []string{
			"Advisory board seat",
			"Brand ambassador role",
			"Scholarship naming rights",
			"Lifetime recognition",
			"Strategic input on programs",
			"Executive networking",
			"Media opportunities",
		},
		PriceEnvKey: "STRIPE_PRICE_MENTOR_LEGACY",
	},
}

// Educators start on a free community tier so every table opens at zero.
var educatorTiers = []Tier{
	{
		ID:       "community",
		Name:     "Educator Community",
		Price:    0,
		Capacity: "0",
		Features: []string{
			"Community forum access",
			"Sample lesson plans",
			"Event calendar access",
		},
	},
	{
		ID:       "individual",
		Name:     "Individual Educator",
		Price:    14900,
		Capacity: "30",
		Features: []string{
			"Full curriculum access",
			"Lesson plans & activities",
			"Classroom resources",
			"Professional development credits",
			"Community forum access",
		},
		PriceEnvKey: "STRIPE_PRICE_EDUCATOR_INDIVIDUAL",
	},
	{
		ID:       "school_starter",
		Name:     "School Starter",
		Price:    99900,
		Capacity: "100",
		Features: []string{
			"Up to 100 student accounts",
			"Full curriculum access",
			"Teacher training program",
			"Parent portal access",
			"Progress reporting",
			"School admin dashboard",
		},
		PriceEnvKey: "STRIPE_PRICE_EDUCATOR_SCHOOL",
	},
	{
		ID:       "district_partner",
		Name:     "District Partner",
		Price:    499900,
		Capacity: "500",
		Features: []string{
			"Up to 500 student accounts",
			"FERPA compliance tools",
			"Admin analytics dashboard",
			"Grant writing support",
			"Dedicated support contact",
			"Integration assistance",
		},
		PriceEnvKey: "STRIPE_PRICE_EDUCATOR_DISTRICT",
	},
	{
		ID:           "regional_affiliate",
		Name:         "Regional Affiliate",
		Price:        1499900,
		Capacity:     "unlimited",
		RevenueShare: 20,
		Features: []string{
			"Unlimited student accounts",
			"White-label option",
			"Exclusive territory rights",
			"20% revenue share",
			"Co-branded marketing",
			"Quarterly business reviews",
		},
		PriceEnvKey: "STRIPE_PRICE_EDUCATOR_REGIONAL",
	},
	{
		ID:           "global_franchise",
		Name:         "Global Franchise",
		Price:        4999900,
		Capacity:     "unlimited",
		RevenueShare: 30,
		Features: []string{
			"Country/region exclusivity",
			"Full brand licensing",
			"30% revenue share",
			"Dedicated account manager",
			"Localization support",
			"Annual summit attendance",
			"Strategic partnership status",
		},
		PriceEnvKey: "STRIPE_PRICE_EDUCATOR_GLOBAL",
	},
}
