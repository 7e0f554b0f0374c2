package mcp

// serverInstructions is injected as domain knowledge for AI clients.
const serverInstructions = `SeedCanvas MCP server — AI-powered infinite canvas for image and video generation.

# Workflow

1. **Read first**: Always call canvas_read(scope=["all"]) to understand current canvas state before making changes.
2. **Generate media**: Use generate_image / generate_video to create assets. They return a taskId.
3. **Poll completion**: Call task_status with the taskId. Image takes ~10-20s, video takes 1-5min.
4. **Place on canvas**: Once done, use canvas_batch to add_node with the returned assetPath as the url field.
5. **Connect nodes**: Use add_edge in the same batch to link related nodes (e.g., source image → derived analysis).

# Canvas Layout Tips

- Space nodes ~300-400px apart to avoid overlap.
- Use canvas_read to check existing positions, then offset new nodes from them.
- Use ref names in add_node + add_edge within a single batch for atomic create-and-connect.
- Node types: "text" (analysis, notes), "image" (generated/imported images), "video" (generated videos).

# Image Prompt Craft — Golden Structure

Write prompts following this priority order (most important first):
Subject → Setting → Style → Lighting → Technical

Core principles:
- **Narrative first** — Drive with motion, emotion, tension. Don't stack parameters.
- **Specific > vague** — "weathered oak table with coffee ring stains" not "table".
- **Dynamic > static** — Even still scenes: describe wind, light flow, reflections.
- **Shorter is better** — If removing a phrase doesn't collapse the image, remove it.
- **Material = visual** — "brushed stainless steel catching light" not "metal surface".
- **Color = precise** — "crimson" / "cobalt" / "emerald" not "red" / "blue" / "green".
- **No quality tails** — Never append "masterpiece, best quality, ultra-detailed".
- **Trust the model** — Common scenes don't need exhaustive description.

Style keywords quick reference:
- Photography: cinematic, editorial portrait, documentary, shot on Kodak Portra 400
- Painting: oil painting impasto, watercolor wet-on-wet, digital painting
- 3D: photorealistic Unreal Engine, Pixar style clay render, isometric low poly
- Mood: film noir, golden hour, blue hour, Rembrandt lighting, rim light

Composition: rule of thirds, centered symmetrical, diagonal, leading lines, negative space, frame within frame.

Common pitfalls: hands (keep simple — holding, resting), multiple people (max 2-3, separate by clothing color), text (short uppercase English in quotes).

# Video Prompt Craft — Universal Formula

Subject + Action + Scene + Lighting + Camera + Style + Quality tags + Constraints

Priority: left to right, decreasing weight. Subject and action matter most.

Hard constraints:
- Character stability: append "五官清晰，面部稳定，不扭曲" for people; multi-shot add "同一角色，服装一致".
- Quality tags: append "4K，超高清，细节丰富，锐度清晰，电影质感" (anime: "线条锐利，影院级渲染").
- Each prompt ≤ 1000 chars.
- No negation words — only describe what IS in the frame.
- Prefer slow continuous motion (缓缓、轻轻、渐渐); split violent action into slow-mo multi-shots.
- Use composition for spatial layout (画面左侧/右侧/前景/背景), not orientation (面对面/背靠背).
- Avoid complex multi-person interaction (2+ people precise interaction fails easily).

Camera reliability matrix:
- Safe: push/pull + any shot size, slow-mo + any, orbit + medium shot
- Risky: close-up + pan (no content), extreme wide + orbit (no focus), close-up + tracking (no space)

Type profiles:
- Anime: fast-cut + slow-mo alternating, cel shading, impact frames
- Cinematic: long takes, medium-close shots, shallow DoF, film grain
- Product: steady rotation → macro detail → function demo → brand freeze
- Documentary: aerial → local → macro → time-lapse → aerial return
- MV: cut on beat, flash transitions on accent, jump cuts for compression
`
