package llm

import (
	"fmt"
	"strings"
)

// Sampling settings for each flow.
const (
	CravingTemperature float32 = 0.7
	CravingMaxTokens           = 300
	MenuTemperature    float32 = 0.3
	MenuMaxTokens              = 1500
)

// CravingSystemPrompt drives the free-text craving flow.
const CravingSystemPrompt = `You are a food expert and nutritionist. Based on the user's craving description and dietary preferences, provide personalized food recommendations.

Your response should be friendly, helpful, and include:
1. Understanding of their craving
2. 2-3 specific food recommendations with brief descriptions
3. Why these recommendations match their craving
4. Any dietary consideration notes if relevant

Keep your response conversational and engaging, around 150-200 words.`

// MenuSystemPrompt drives the menu-image flow and fixes the JSON contract.
const MenuSystemPrompt = `You are a food expert analyzing a menu image. Based on the user's cravings and the menu items visible in the image, identify which dishes would best match their desires.

Your response should be a JSON object with the following structure:
{
  "recommendations": [
    {
      "name": "Dish Name",
      "description": "Brief description from menu or inferred",
      "price": "Price if visible, or 'Price not visible'",
      "category": "Category (appetizer, main, dessert, etc.)",
      "matchScore": 85,
      "reasons": ["Reason 1", "Reason 2", "Reason 3"],
      "dietary": ["Vegetarian", "Gluten-Free", etc.],
      "spiceLevel": 2,
      "estimatedPosition": {
        "x": 50,
        "y": 30,
        "width": 200,
        "height": 80
      }
    }
  ],
  "summary": "Brief explanation of why these dishes were recommended"
}

Guidelines:
- Identify 3-6 menu items that best match the user's cravings
- matchScore should be 60-95 based on how well it matches their craving
- Include dietary information if visible or can be inferred
- spiceLevel: 0=mild, 1=mild-medium, 2=medium, 3=spicy, 4=very spicy
- estimatedPosition should be approximate coordinates where the dish appears on the menu (as percentages)
- Focus on dishes that genuinely match what they're craving
- If you can't read the menu clearly, mention this in the summary

Return ONLY the JSON object, no additional text.`

// CravingPrompt renders the user message for a craving. The cuisine
// preference, when present, is folded into the craving text.
func CravingPrompt(craving, cuisine string, dietary []string) string {
	var b strings.Builder
	b.WriteString("I'm craving: ")
	b.WriteString(craving)
	if cuisine != "" {
		fmt.Fprintf(&b, " (I prefer %s cuisine)", cuisine)
	}
	if len(dietary) > 0 {
		b.WriteString("\n\nMy dietary preferences: ")
		b.WriteString(strings.Join(dietary, ", "))
	}
	return b.String()
}

// RegeneratePrompt asks for a fresh set that avoids everything already shown.
func RegeneratePrompt(craving, cuisine string, dietary, shown []string) string {
	prompt := CravingPrompt(craving, cuisine, dietary)
	prompt += "\n\nPlease give me different results than before."
	if len(shown) > 0 {
		prompt += fmt.Sprintf(" Do not suggest any of these again: %s. Recommend clearly different dishes.", strings.Join(shown, ", "))
	}
	return prompt
}

// MenuPrompt renders the user message that accompanies a menu image.
func MenuPrompt(cravings string) string {
	return fmt.Sprintf(`I'm craving: %s

Please analyze this menu image and recommend dishes that match my cravings. Focus on items that would satisfy what I'm looking for.`, cravings)
}
