package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/dealerproofflow/internal/models"
	"github.com/Lllllllleong/dealerproofflow/internal/retry"
)

// --- Offer Extraction Model Prompts ---
const OfferSystemPrompt = "You are analyzing Direct Mail PDF proofs for automotive dealerships. Your task is to extract coupon offer information from each document and report it as a structured JSON object. Accuracy and completeness are of utmost importance."

const offerPromptTemplate = `You are analyzing a Direct Mail PDF proof for a dealership.

File: %s
Metadata: %s

Please extract the following information about coupon offers from this document:
1. Coupon offer description (e.g., "$500 off", "0%% APR for 60 months", "Free oil changes for 1 year")
2. Expiration date (if mentioned)
3. Terms and conditions (brief summary)
4. Target vehicle models or types (if specified)
5. Any special requirements or restrictions

Format your response as a structured JSON object with the following keys:
- offers: List of offer descriptions
- expiration_date: The expiration date if found, otherwise null
- terms: Brief summary of terms and conditions
- target_vehicles: List of vehicle models or types
- restrictions: Any special requirements

If no coupon information is found, return an empty offers list.
`

// VertexClient holds the pre-configured generative model used for offer
// extraction.
type VertexClient struct {
	OfferModel *genai.GenerativeModel
	baseClient *genai.Client
	retry      retry.Policy
}

// NewVertexClient creates a client with the offer-extraction model
// configured: low temperature for deterministic structured output, and
// permissive safety settings since advertising copy regularly trips the
// default thresholds.
func NewVertexClient(ctx context.Context, projectID, region, modelName string, temperature float32, maxOutputTokens int32, policy retry.Policy) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	offerModel := baseClient.GenerativeModel(modelName)
	offerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(OfferSystemPrompt)},
	}
	offerModel.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: genai.Ptr(maxOutputTokens),
	}
	offerModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		OfferModel: offerModel,
		baseClient: baseClient,
		retry:      policy,
	}, nil
}

// ExtractOfferInfo asks Gemini for the coupon offers in one document.
// The prompt is built from the filename and extracted metadata; when
// pdfContent is non-nil the raw document is attached to the request.
// The response is returned as free text, expected but not required to
// be JSON.
func (c *VertexClient) ExtractOfferInfo(ctx context.Context, filename string, meta *models.Metadata, pdfContent []byte) (string, error) {
	prompt := fmt.Sprintf(offerPromptTemplate, filename, formatMetadata(meta))

	parts := []genai.Part{genai.Text(prompt)}
	if pdfContent != nil {
		parts = append(parts, genai.Blob{
			MIMEType: "application/pdf",
			Data:     pdfContent,
		})
	}

	var resp *genai.GenerateContentResponse
	err := c.retry.Do(ctx, "vertex.generateContent", func() error {
		var callErr error
		resp, callErr = c.OfferModel.GenerateContent(ctx, parts...)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	return extractText(resp), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// formatMetadata renders the non-empty extracted fields for the prompt.
func formatMetadata(meta *models.Metadata) string {
	if meta == nil {
		return "{}"
	}
	pairs := []struct{ key, value string }{
		{"date", meta.Date},
		{"parsed_date", meta.ParsedDate},
		{"dealership", meta.Dealership},
		{"version", meta.Version},
		{"campaign", meta.Campaign},
		{"region", meta.Region},
		{"model", meta.Model},
	}
	var b strings.Builder
	b.WriteString("{")
	first := true
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.key, p.value)
		first = false
	}
	b.WriteString("}")
	return b.String()
}

// extractText concatenates the text parts of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
