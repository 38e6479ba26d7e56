package intent

// Trigger 规则命中后进入的信息收集流程
type Trigger string

const (
	// NoTrigger 保持自由对话
	NoTrigger Trigger = ""
	// TriggerName 开始 姓名 → 电话 的线索收集流程
	TriggerName Trigger = "NAME"
)

// Rule 知识库中由关键词触发的一条回复。关键词之间为或关系；
// Interest 非空时标记访客咨询的方向。
type Rule struct {
	ID       string   `json:"id"`
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
	Options  []string `json:"options,omitempty"`
	Interest string   `json:"interest,omitempty"`
	Trigger  Trigger  `json:"trigger,omitempty"`
}

// Reply 不属于任何规则的机器人回复，例如兜底回复。
type Reply struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// TopLevelOptions 问候与兜底回复提供的菜单
var TopLevelOptions = []string{"Student Visa 🎓", "Visitor Visa ✈️", "Work Permit & PR 🏆", "Talk to Counselor 👨‍💼"}

// Fallback 没有规则命中时发送
func Fallback() Reply {
	return Reply{
		Text:    "I want to ensure I understand you perfectly. 🤔\n\nI can connect you directly to our visa consultant, or you can choose from these popular options:",
		Options: append([]string(nil), TopLevelOptions...),
	}
}

// Opening 返回新会话开头的两条消息。
func Opening() []Reply {
	return []Reply{
		{Text: "Welcome to My Abroad Portal! 🌐 A Vision for Your Future."},
		{Text: "How can we help you with your visa needs today?", Options: append([]string(nil), TopLevelOptions...)},
	}
}

// Seed 返回咨询知识库。顺序即优先级，第一条命中的规则生效，
// 所以宽泛的规则排在与之重叠的具体规则之后。
func Seed() []Rule {
	return []Rule{
		{
			ID:       "greeting",
			Keywords: []string{"hi", "hello", "hey", "greetings", "start", "morning", "afternoon", "namaste"},
			Response: "Welcome to **My Abroad Portal**! 🌐 A Vision for Your Future.\n\nWe specialize in **Student Visas**, **Visitor Visas**, and **Work Permits & PR**.\n\nHow can we help you today?",
			Options:  append([]string(nil), TopLevelOptions...),
		},
		{
			ID:       "student-visa",
			Keywords: []string{"student visa", "study abroad", "study visa", "student", "university", "college", "education"},
			Response: "**Student Visa Services** 🎓\n\nWe provide complete support for study permits in:\n• Canada 🍁\n• USA 🦅\n• UK 🇬🇧\n• Australia 🦘\n\n**Services Include:**\n✅ University Selection\n✅ SOP & LOR Guidance\n✅ Visa Application Filing\n✅ Interview Preparation\n\nWhich country interests you?",
			Options:  []string{"Canada", "USA", "UK", "Australia", "All Countries"},
			Interest: "Student Visa",
		},
		{
			ID:       "visitor-visa",
			Keywords: []string{"visitor visa", "tourist visa", "visit", "travel", "family visit", "tourism"},
			Response: "**Visitor Visa Services** ✈️\n\nExpert assistance for tourist and family visit visas:\n• Canada Tourist Visa\n• USA B1/B2 Visa\n• UK Visit Visa\n• Schengen Visa\n\n**We Handle:**\n✅ Document Preparation\n✅ Application Filing\n✅ Interview Support\n\nWhich country would you like to visit?",
			Options:  []string{"Canada", "USA", "UK", "Europe", "Talk to Counselor"},
			Interest: "Visitor Visa",
		},
		{
			ID:       "work-permit-pr",
			Keywords: []string{"work permit", "pr", "permanent residence", "immigration", "express entry", "skilled migration", "work visa"},
			Response: "**Work Permit & PR Services** 🏆\n\n**Canada:**\n• Express Entry\n• Provincial Nomination (PNP)\n• Post-Graduation Work Permit\n\n**Australia:**\n• Skilled Migration (189/190)\n• Points Assessment\n• Employer Sponsorship\n\n**Services:**\n✅ Eligibility Assessment (FREE)\n✅ Documentation Support\n✅ Application Filing\n\nWhich program interests you?",
			Options:  []string{"Canada Express Entry", "Australia PR", "Points Assessment", "Talk to Expert"},
			Interest: "Work Permit & PR",
		},
		{
			ID:       "visa-services",
			Keywords: []string{"visa", "immigration", "foreign", "permit"},
			Response: "**My Abroad Portal Visa Services** 🌍\n\nWe handle all types of visas:\n\n🎓 **Student Visas** - Study permits for Canada, USA, UK, Australia\n✈️ **Visitor Visas** - Tourist & family visit visas\n🏆 **Work Permits & PR** - Permanent residency solutions\n\nWhich service do you need?",
			Options:  []string{"Student Visa", "Visitor Visa", "Work Permit & PR", "Free Consultation"},
			Interest: "Visa Services",
		},
		{
			ID:       "canada",
			Keywords: []string{"canada", "canadian"},
			Response: "**Canada Study Visa** 🇨🇦\n\n✅ Post-study work permit (3 years)\n✅ PR pathway available\n✅ High acceptance rate\n\n**Our Package Includes:**\n• University shortlisting\n• SOP & LOR creation\n• Financial documentation audit\n• Visa interview prep\n\nFirst assessment is FREE! Want to proceed?",
			Options:  []string{"Book Free Assessment", "Talk to Counselor"},
			Interest: "Canada Visa",
		},
		{
			ID:       "uk",
			Keywords: []string{"uk", "united kingdom", "britain", "england"},
			Response: "**UK Study Visa** 🇬🇧\n\n✅ 2-year post-study work visa\n✅ World-class universities\n✅ 1-year master's programs\n\n**Our Package Includes:**\n• University selection\n• UCAS application support\n• CAS letter guidance\n• Visa filing & interview prep\n\nReady to explore UK options?",
			Options:  []string{"Book Free Assessment", "Talk to Counselor"},
			Interest: "UK Visa",
		},
		{
			ID:       "usa",
			Keywords: []string{"usa", "america", "united states", "us"},
			Response: "**USA Study Visa** 🇺🇸\n\n✅ OPT & STEM extension\n✅ Top-ranked universities\n✅ Research opportunities\n\n**Our Package Includes:**\n• University matching\n• I-20 processing\n• DS-160 & SEVIS fee guidance\n• F-1 visa interview coaching\n\nInterested in USA admission?",
			Options:  []string{"Book Free Assessment", "Talk to Counselor"},
			Interest: "USA Visa",
		},
		{
			ID:       "australia",
			Keywords: []string{"australia", "aussie", "aus"},
			Response: "**Australia Study Visa** 🇦🇺\n\n✅ Post-study work rights\n✅ Relaxed visa requirements\n✅ Affordable living costs\n\n**Our Package Includes:**\n• Course & university selection\n• GTE statement drafting\n• Health insurance setup\n• Visa lodgement support\n\nWant to know your eligibility?",
			Options:  []string{"Book Free Assessment", "Talk to Counselor"},
			Interest: "Australia Visa",
		},
		{
			ID:       "pricing",
			Keywords: []string{"price", "cost", "fees", "charge", "money", "payment", "expensive", "rupees"},
			Response: "**Transparent Pricing** 💎\n\n**First Profile Assessment:** **FREE** ✅\n\n**Full Visa Package:** Varies by country & visa type\n• Student Visa: Contact for quote\n• Visitor Visa: Contact for quote\n• PR Services: Contact for quote\n\n*We offer customized packages based on your needs.*\n\nReady to get started with a FREE assessment?",
			Options:  []string{"Free Assessment", "Talk to Counselor"},
			Interest: "Pricing",
		},
		{
			ID:       "location",
			Keywords: []string{"location", "address", "where", "office", "city", "located"},
			Response: "**Visit Us** 🏢\n\n📍 **Vadodara | Ahmedabad | Mahesana**\n📞 **+91 63589 90015**\n\nVisit any of our 3 branches for a free consultation!\n\nWould you like directions or prefer to book an appointment?",
			Options:  []string{"Book Appointment", "Call Now"},
			Interest: "General Inquiry",
		},
		{
			ID:       "book-counselor",
			Keywords: []string{"counselor", "counsellor", "consultation", "demo", "book", "booking", "register", "enroll", "sign up", "yes", "appointment"},
			Response: "Perfect! 🌟 A free consultation is the best way to understand your options.\n\nLet's get you booked. **What is your full name?**",
			Trigger:  TriggerName,
		},
		{
			ID:       "contact",
			Keywords: []string{"contact", "phone", "call", "number", "speak", "talk", "human", "agent"},
			Response: "**Contact My Abroad Portal** 📞\n\n**Phone:** +91 63589 90015\n**Locations:** Vadodara | Ahmedabad | Mahesana\n**WhatsApp:** Available 24/7\n\nOur senior visa consultants are ready to help!\n\nHow would you like to connect?",
			Options:  []string{"Call Now", "Chat on WhatsApp", "Request Call Back"},
			Interest: "General Inquiry",
		},
	}
}
