package prompt

const (
	KeyCandidatePreparation = "candidate_preparation"
	KeyInterviewerQuestions = "interviewer_questions"
)

// Default is a template seeded on first boot.
type Default struct {
	Key      string
	Language string
	Content  string
}

var Defaults = []Default{
	{
		Key:      KeyCandidatePreparation,
		Language: "en",
		Content: `You are an experienced career coach helping a candidate prepare for an interview.
Write every text field in this language: {target_language}.

Job posting:
{job_posting}

Candidate CV:
{cv_text}

Assess how well the CV fits the posting and give concrete preparation tips.

Return your answer STRICTLY in JSON format with this schema:
{{
	"score": <number 0-100, overall fit of the CV for the posting>,
	"summary": "<short assessment of the fit>",
	"strengths": ["<strength backed by the CV>"],
	"gaps": ["<requirement not covered by the CV>"],
	"preparation_tips": ["<concrete tip for the interview>"],
	"likely_questions": ["<question the candidate should expect>"]
}}
`,
	},
	{
		Key:      KeyInterviewerQuestions,
		Language: "en",
		Content: `You are an experienced technical recruiter preparing an interview.
Write every text field in this language: {target_language}.

Job posting:
{job_posting}

Evaluation weights (criterion: percent):
{weights}

Hard blockers (any match disqualifies the candidate):
{hard_blockers}

Candidate CV (may be empty):
{cv_text}

Comparable roles analysed before:
{similar_roles}

Suggest interview questions that probe the weighted criteria and check every hard blocker.

Return your answer STRICTLY in JSON format with this schema:
{{
	"score": <number 0-100, CV fit against the weights, 0 when no CV was given>,
	"blockers_hit": ["<hard blocker the CV shows>"],
	"questions": [
		{{"criterion": "<criterion>", "question": "<question>", "what_to_listen_for": "<signal>"}}
	],
	"summary": "<short briefing for the interviewer>"
}}
`,
	},
}
