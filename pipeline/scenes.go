package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
)

const sceneSystemPrompt = `You are a visual description expert who creates vivid, cinematic scene descriptions. Your descriptions will be used to generate visual imagery.

For each paragraph, create a highly detailed scene description that includes:

REQUIRED ELEMENTS:
1. Physical Setting
   - Specific details about the environment and location
   - Architecture, natural features, or room details
   - Time of day and lighting conditions

2. Visual Atmosphere
   - Color palette and overall tone
   - Weather or environmental conditions
   - Lighting quality and shadows
   - Texture and material details

3. Key Subjects
   - Main characters or objects and their positioning
   - Important visual elements that draw focus
   - Scale and spatial relationships

4. Camera Perspective
   - Suggested viewing angle (eye-level, bird's eye, etc.)
   - Shot type (wide establishing shot, medium shot, etc.)
   - Depth and composition details

RULES:
- Focus ONLY on visual elements that could be rendered in an image
- Be extremely specific about visual details
- Maintain consistency with the broader narrative context
- Describe only what is visible, not abstract concepts
- Keep descriptions objective and avoid interpretation
- No fantastical elements; the scene must be photorealistic

Format your response as a JSON object:
{
  "description": "Your detailed visual description here"
}`

type sceneResponse struct {
	Description string `json:"description"`
}

// GenerateSceneDescriptions produces one visual description per paragraph of
// content. Calls run in parallel under the shared provider gate; results are
// written by paragraph index so output order matches unit order regardless
// of completion order.
func (p *Pipeline) GenerateSceneDescriptions(ctx context.Context, content string) ([]SceneDescription, error) {
	units := SplitParagraphs(content)
	if len(units) == 0 {
		return nil, nil
	}
	log.Printf("[scenes] describing %d paragraphs", len(units))

	scenes := make([]SceneDescription, len(units))
	g, gctx := errgroup.WithContext(ctx)
	for i := range units {
		g.Go(func() error {
			scene, err := p.describeScene(gctx, units, i)
			if err != nil {
				return err
			}
			scenes[i] = scene
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scenes, nil
}

// describeScene asks the model for one paragraph's description, giving it a
// local context window (the neighboring paragraphs) rather than the whole
// section; that keeps prompts small without losing narrative continuity.
func (p *Pipeline) describeScene(ctx context.Context, units []TextUnit, i int) (SceneDescription, error) {
	unit := units[i]
	prompt := fmt.Sprintf(`CONTEXT:
%s

PARAGRAPH TO VISUALIZE:
%s

TASK:
Generate a highly detailed scene description for this specific paragraph that could be used to create a visual image. Consider the broader context but focus on this particular moment in the narrative.

Remember to include all required elements:
1. Physical Setting
2. Visual Atmosphere
3. Key Subjects
4. Camera Perspective`, contextWindow(units, i), unit.Text)

	var raw string
	err := p.gate.Do(ctx, func() error {
		var completeErr error
		raw, completeErr = p.llm.Complete(ctx, sceneSystemPrompt, prompt)
		return completeErr
	})
	if err != nil {
		return SceneDescription{}, fmt.Errorf("scene completion for paragraph %d: %w", i, err)
	}

	parsed, err := parseSceneResponse(raw)
	if err != nil {
		return SceneDescription{}, err
	}

	return SceneDescription{
		Text:              unit.Text,
		Description:       parsed.Description,
		DisplayPercentage: unit.DisplayPercentage,
	}, nil
}

func contextWindow(units []TextUnit, i int) string {
	parts := make([]string, 0, 3)
	if i > 0 {
		parts = append(parts, units[i-1].Text)
	}
	parts = append(parts, units[i].Text)
	if i < len(units)-1 {
		parts = append(parts, units[i+1].Text)
	}
	return strings.Join(parts, "\n\n")
}

func parseSceneResponse(raw string) (sceneResponse, error) {
	var resp sceneResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return resp, &SceneParseError{Raw: raw, Err: err}
	}
	if resp.Description == "" {
		return resp, &SceneParseError{Raw: raw, Err: errors.New("missing description field")}
	}
	return resp, nil
}
